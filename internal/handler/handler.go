package handler

import (
	"net/http"
	"strconv"

	"pos/internal/domain/model"
	appmw "pos/internal/middleware"
	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 認証ミドルウェアがcontextに積んだ操作者を取り出す
func actorFrom(c echo.Context) usecase.Actor {
	actor := usecase.Actor{}
	if id, ok := c.Get(appmw.CtxEmployeeIDKey).(int64); ok {
		actor.ID = id
	}
	if name, ok := c.Get(appmw.CtxEmployeeNameKey).(string); ok {
		actor.Name = name
	}
	if role, ok := c.Get(appmw.CtxEmployeeRoleKey).(string); ok {
		actor.Role = model.Role(role)
	}
	return actor
}

func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// クエリの整数（未指定ならdefault）
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
