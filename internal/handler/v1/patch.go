package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// patchBody — тело PATCH-запроса. Отличает «поле не передано» от «передан null».
type patchBody map[string]json.RawMessage

func bindPatch(c *gin.Context) (patchBody, bool) {
	var body patchBody
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request: "+err.Error())
		return nil, false
	}
	return body, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decode разбирает поле key в out. Возвращает false, если поля нет.
// null допустим только для nullable-полей, тогда out не трогается.
func (p patchBody) decode(key string, nullable bool, out any) (present, null bool, err error) {
	raw, ok := p[key]
	if !ok {
		return false, false, nil
	}
	if isNull(raw) {
		if !nullable {
			return true, true, fmt.Errorf("%s must not be null", key)
		}
		return true, true, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return true, false, nil
}

// columns собирает изменения справочника: ключ JSON совпадает с колонкой.
// required — строковые поля, которые нельзя обнулить или сделать пустыми.
func (p patchBody) columns(required, optional []string) (map[string]any, error) {
	fields := make(map[string]any)
	for _, key := range required {
		var v string
		present, _, err := p.decode(key, false, &v)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		if v == "" {
			return nil, fmt.Errorf("%s must not be empty", key)
		}
		fields[key] = v
	}
	for _, key := range optional {
		var v string
		present, null, err := p.decode(key, true, &v)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		if null {
			fields[key] = nil
			continue
		}
		fields[key] = v
	}
	return fields, nil
}
