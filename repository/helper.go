package repository

import (
	"fmt"

	"github.com/dataops/sqlman/common"
	"github.com/dataops/sqlman/model"
)

var (
	ErrRecordNotFound   = fmt.Errorf("record not found")
	ErrRecordExists     = fmt.Errorf("record is exists already")
	ErrTransActionBegin = fmt.Errorf("transaction already begin")
	ErrTransActionEnd   = fmt.Errorf("transaction already commit or rollback")
)

// Credentials are stored encrypted. Only the repository touches them;
// everything above it works with the data source id.
func EncodePasswd(ds *model.DataSource) {
	ds.Password = common.AesEncryptECB(ds.Password)
}

func DecodePasswd(ds *model.DataSource) {
	ds.Password = common.AesDecryptECB(ds.Password)
}
