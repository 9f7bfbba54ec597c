package helpers

import (
	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyCompanyID ctxKey = "company_id"
)

func SetCompanyID(c echo.Context, id string) { c.Set(string(keyCompanyID), id) }
func GetCompanyIDRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyCompanyID))
	id, ok := v.(string)
	return id, ok && id != ""
}
