package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxEmployeeIDKey   = "employee_id"   // int64
	CtxEmployeeNameKey = "employee_name" // string
	CtxEmployeeRoleKey = "employee_role" // string
)

// bearerAuth用のJWT検証ミドルウェア。
// 旧端末向けにX-Employee-Idヘッダも受け付けるが、
// その場合もDBのスタッフ行を引いてロールを確定する（ヘッダのロールは信用しない）。
func AuthEmployee(cfg config.Config, employees repository.EmployeeRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz != "" {
				//Bearer形式か確認してtokenを抜く
				parts := strings.SplitN(authz, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				rawToken := strings.TrimSpace(parts[1])
				if rawToken == "" {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				//JWTをパースして検証する
				token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
					if t.Method != jwt.SigningMethodHS256 {
						return nil, errors.New("unexpected signing method")
					}
					return []byte(cfg.JWTSecret), nil
				})
				if err != nil || token == nil || !token.Valid {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				//claimsを取り出す
				claims, ok := token.Claims.(jwt.MapClaims)
				if !ok {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				employeeID, err := parseEmployeeID(claims["sub"])
				if err != nil || employeeID <= 0 {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				name, err := parseString(claims["name"])
				if err != nil {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				role, err := parseString(claims["role"])
				if err != nil || !model.Role(role).Valid() {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}

				//contextへ保存
				c.Set(CtxEmployeeIDKey, employeeID)
				c.Set(CtxEmployeeNameKey, name)
				c.Set(CtxEmployeeRoleKey, role)

				return next(c)
			}

			//レガシーヘッダ（移行期間中の旧レジ端末）
			rawID := strings.TrimSpace(c.Request().Header.Get("X-Employee-Id"))
			if rawID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			employeeID, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil || employeeID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ロールはDBから引く
			emp, err := employees.FindByID(c.Request().Context(), employeeID)
			if err != nil || !emp.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxEmployeeIDKey, emp.ID)
			c.Set(CtxEmployeeNameKey, emp.Name)
			c.Set(CtxEmployeeRoleKey, string(emp.Role))

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// subをint64に変換する
func parseEmployeeID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
