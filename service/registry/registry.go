package registry

import (
	"context"
	"sync"
	"time"

	"github.com/go-basic/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/dataops/sqlman/common"
	"github.com/dataops/sqlman/log"
	"github.com/dataops/sqlman/model"
	"github.com/dataops/sqlman/repository"
	"github.com/dataops/sqlman/service/executor"
)

// Registry owns the data source records and their volatile state:
// last-known reachability and the cached database list. Credentials stay
// below this layer; everything above references a data source by id.
type Registry struct {
	repo           repository.PersistentMgr
	exec           executor.Executor
	dbCache        *cache.Cache
	group          singleflight.Group
	probeLocks     sync.Map
	connectTimeout time.Duration
}

func NewRegistry(repo repository.PersistentMgr, exec executor.Executor, connectTimeout time.Duration) *Registry {
	return &Registry{
		repo:           repo,
		exec:           exec,
		dbCache:        cache.New(time.Hour, 10*time.Minute),
		connectTimeout: connectTimeout,
	}
}

func validate(req model.DataSourceReq) error {
	if req.Name == "" {
		return model.NewFlowError(model.KindValidation, "data source name is empty")
	}
	if req.Host == "" {
		return model.NewFlowError(model.KindValidation, "data source host is empty")
	}
	if req.User == "" {
		return model.NewFlowError(model.KindValidation, "data source user is empty")
	}
	if _, ok := model.EngineDefaultPort[req.Kind]; !ok {
		return model.NewFlowError(model.KindValidation, "unsupported engine kind %s", req.Kind)
	}
	if req.Port < 0 || req.Port > 65535 {
		return model.NewFlowError(model.KindValidation, "port %d out of range", req.Port)
	}
	return nil
}

func (r *Registry) Register(req model.DataSourceReq) (model.DataSource, error) {
	if err := validate(req); err != nil {
		return model.DataSource{}, err
	}
	now := time.Now()
	ds := model.DataSource{
		Id:              uuid.New(),
		Name:            req.Name,
		Kind:            req.Kind,
		Host:            req.Host,
		Port:            common.GetIntegerwithDefault(req.Port, model.EngineDefaultPort[req.Kind]),
		User:            req.User,
		Password:        req.Password,
		Charset:         common.GetStringwithDefault(req.Charset, "utf8mb4"),
		DefaultDatabase: req.DefaultDatabase,
		Remark:          req.Remark,
		Reachability:    model.ReachabilityUnknown,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.repo.CreateDataSource(ds); err != nil {
		if err == repository.ErrRecordExists {
			return model.DataSource{}, model.NewFlowError(model.KindConflict, "data source %s already exists", req.Name)
		}
		return model.DataSource{}, err
	}
	return ds, nil
}

func (r *Registry) Update(id string, req model.DataSourceReq) (model.DataSource, error) {
	if err := validate(req); err != nil {
		return model.DataSource{}, err
	}
	ds, err := r.Resolve(id)
	if err != nil {
		return model.DataSource{}, err
	}
	ds.Name = req.Name
	ds.Kind = req.Kind
	ds.Host = req.Host
	ds.Port = common.GetIntegerwithDefault(req.Port, model.EngineDefaultPort[req.Kind])
	ds.User = req.User
	if req.Password != "" {
		ds.Password = req.Password
	}
	ds.Charset = common.GetStringwithDefault(req.Charset, ds.Charset)
	ds.DefaultDatabase = req.DefaultDatabase
	ds.Remark = req.Remark
	// connection details changed, forget what we knew about the target
	ds.Reachability = model.ReachabilityUnknown
	ds.UpdatedAt = time.Now()
	r.dbCache.Delete(id)
	if err = r.repo.UpdateDataSource(ds); err != nil {
		return model.DataSource{}, err
	}
	return ds, nil
}

// Resolve returns the full record including the decoded credential, for
// the executor's eyes only.
func (r *Registry) Resolve(id string) (model.DataSource, error) {
	ds, err := r.repo.GetDataSourceById(id)
	if err != nil {
		if err == repository.ErrRecordNotFound {
			return model.DataSource{}, model.NewFlowError(model.KindNotFound, "data source %s not found", id)
		}
		return model.DataSource{}, err
	}
	return ds, nil
}

func (r *Registry) List() ([]model.DataSource, error) {
	return r.repo.GetAllDataSources()
}

func (r *Registry) Delete(id string) error {
	if !r.repo.DataSourceExists(id) {
		return model.NewFlowError(model.KindNotFound, "data source %s not found", id)
	}
	count, err := r.repo.CountOrdersByDataSource(id)
	if err != nil {
		return err
	}
	if count > 0 {
		// a historical order must never lose its data source reference
		return model.NewFlowError(model.KindConflict, "data source %s is referenced by %d order(s)", id, count)
	}
	if err = r.repo.DeleteDataSource(id); err != nil {
		return err
	}
	r.dbCache.Delete(id)
	return nil
}

// TestConnection probes the data source and stores the outcome in the
// reachability field. A network failure is the result, not an error:
// only a missing record or a persistence failure returns err != nil.
// Probes are serialized per data source id.
func (r *Registry) TestConnection(ctx context.Context, id string) (model.ReachabilityResult, error) {
	lock, _ := r.probeLocks.LoadOrStore(id, &sync.Mutex{})
	lock.(*sync.Mutex).Lock()
	defer lock.(*sync.Mutex).Unlock()

	ds, err := r.Resolve(id)
	if err != nil {
		return model.ReachabilityResult{}, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.connectTimeout)
	defer cancel()

	start := time.Now()
	probeErr := r.exec.TestConnection(probeCtx, ds)
	result := model.ReachabilityResult{
		Success:   probeErr == nil,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if probeErr == nil {
		result.Message = "connection ok"
		ds.Reachability = model.ReachabilityReachable
	} else {
		result.Message = probeErr.Error()
		ds.Reachability = model.ReachabilityUnreachable
		// a failed probe invalidates the cached database list
		r.dbCache.Delete(id)
	}
	ds.UpdatedAt = time.Now()
	if err = r.repo.UpdateDataSource(ds); err != nil {
		return model.ReachabilityResult{}, err
	}
	return result, nil
}

// ListDatabases returns the database names of a reachable data source.
// The result is cached until the next failing probe; concurrent callers
// share one in-flight fetch instead of issuing separate round trips.
func (r *Registry) ListDatabases(ctx context.Context, id string) ([]string, error) {
	if cached, ok := r.dbCache.Get(id); ok {
		return cached.([]string), nil
	}

	names, err, _ := r.group.Do(id, func() (interface{}, error) {
		ds, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		fetchCtx, cancel := context.WithTimeout(ctx, r.connectTimeout)
		defer cancel()
		databases, err := r.exec.ListDatabases(fetchCtx, ds)
		if err != nil {
			if kind := model.KindOf(err); kind == model.KindConnection || kind == model.KindTimeout {
				r.MarkUnreachable(id)
			}
			return nil, err
		}
		databases = common.ArrayDistinct(databases)
		r.dbCache.SetDefault(id, databases)
		r.markReachable(id)
		return databases, nil
	})
	if err != nil {
		return nil, err
	}
	return names.([]string), nil
}

// MarkUnreachable flips the stored reachability and drops the cached
// database list. Called by whoever observes a connection failure.
func (r *Registry) MarkUnreachable(id string) {
	r.dbCache.Delete(id)
	r.setReachability(id, model.ReachabilityUnreachable)
}

func (r *Registry) markReachable(id string) {
	r.setReachability(id, model.ReachabilityReachable)
}

func (r *Registry) setReachability(id, state string) {
	ds, err := r.repo.GetDataSourceById(id)
	if err != nil {
		return
	}
	if ds.Reachability == state {
		return
	}
	ds.Reachability = state
	ds.UpdatedAt = time.Now()
	if err = r.repo.UpdateDataSource(ds); err != nil {
		log.Logger.Errorf("update reachability of data source %s failed: %v", id, err)
	}
}
