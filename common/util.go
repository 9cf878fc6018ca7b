package common

import (
	"bytes"
	"encoding/gob"
	"os"
	"strconv"
	"strings"
)

func GetStringwithDefault(value, defaul string) string {
	if value == "" {
		return defaul
	}
	return value
}

func GetIntegerwithDefault(value, defaul int) int {
	if value == 0 {
		return defaul
	}
	return value
}

func ArrayDistinct(arr []string) []string {
	set := make(map[string]struct{}, len(arr))
	var result []string
	for _, v := range arr {
		if v == "" {
			continue
		}
		if _, ok := set[v]; !ok {
			set[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

func ArraySearch(target string, array []string) bool {
	for _, v := range array {
		if target == v {
			return true
		}
	}
	return false
}

func DeepCopyByGob(dst, src interface{}) error {
	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(src); err != nil {
		return err
	}
	return gob.NewDecoder(&buffer).Decode(dst)
}

func EnvStringVar(value *string, key string) {
	realKey := strings.ReplaceAll(strings.ToUpper(key), "-", "_")
	val, found := os.LookupEnv(realKey)
	if found {
		*value = val
	}
}

func EnvIntVar(value *int, key string) {
	realKey := strings.ReplaceAll(strings.ToUpper(key), "-", "_")
	val, found := os.LookupEnv(realKey)
	if found {
		valInt, err := strconv.Atoi(val)
		if err == nil {
			*value = valInt
		}
	}
}
