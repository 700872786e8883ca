package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/uz-pay/uz_pay/internal/config"
	"github.com/uz-pay/uz_pay/internal/logging"
	"github.com/uz-pay/uz_pay/internal/middleware"
)

const adminToken = "admin-secret"

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	app := fiber.New()
	cfg := config.Config{
		AppEnv:          "development",
		DefaultCurrency: "UZS",
		AdminTokenHash:  string(hash),
	}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

type call struct {
	method string
	path   string
	body   string
	admin  bool
	user   string
}

func (c call) do(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if c.body != "" {
		reader = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.admin {
		req.Header.Set(middleware.AdminTokenHeader, adminToken)
	}
	if c.user != "" {
		req.Header.Set(middleware.UserIDHeader, c.user)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &out)
	return resp.StatusCode, out
}

func mustID(t *testing.T, app *fiber.App, c call) string {
	t.Helper()
	status, out := c.do(t, app)
	if status != fiber.StatusCreated {
		t.Fatalf("%s %s: expected %d got %d: %v", c.method, c.path, fiber.StatusCreated, status, out)
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("%s %s: missing id in %v", c.method, c.path, out)
	}
	return id
}

func TestPaymentFlow(t *testing.T) {
	app := setupApp(t)

	bankID := mustID(t, app, call{method: fiber.MethodPost, path: "/api/v1/admin/banks", body: `{"name":"NBU"}`, admin: true})
	cardID := mustID(t, app, call{method: fiber.MethodPost, path: "/api/v1/admin/cards", admin: true,
		body: `{"number":"8600111122223333","type":"HUMO","bank_id":"` + bankID + `","expiration_date":"11/29"}`})
	categoryID := mustID(t, app, call{method: fiber.MethodPost, path: "/api/v1/admin/merchant-categories", body: `{"name":"Taxi"}`, admin: true})
	merchantID := mustID(t, app, call{method: fiber.MethodPost, path: "/api/v1/admin/merchants", admin: true,
		body: `{"name":"Yandex Go","category_id":"` + categoryID + `"}`})

	if status, _ := (call{method: fiber.MethodPut, path: "/api/v1/admin/cards/" + cardID + "/owner", body: `{"user_id":"alice"}`, admin: true}).do(t, app); status != fiber.StatusNoContent {
		t.Fatalf("assign: expected %d got %d", fiber.StatusNoContent, status)
	}
	status, out := (call{method: fiber.MethodPost, path: "/api/v1/admin/cards/" + cardID + "/topup", body: `{"amount":"100"}`, admin: true}).do(t, app)
	if status != fiber.StatusCreated || out["balance"] != "100.0000" {
		t.Fatalf("topup: %d %v", status, out)
	}

	payment := `{"card_id":"` + cardID + `","merchant_id":"` + merchantID + `","amount":"30.00","device_id":"ios-1","phone_number":"+998971112233"}`
	status, out = (call{method: fiber.MethodPost, path: "/api/v1/payments/phone", body: payment, user: "alice"}).do(t, app)
	if status != fiber.StatusCreated || out["channel"] != "phone" || out["amount"] != "30.00" {
		t.Fatalf("payment: %d %v", status, out)
	}
	if status, _ := (call{method: fiber.MethodPost, path: "/api/v1/payments/phone", body: payment, user: "bob"}).do(t, app); status != fiber.StatusForbidden {
		t.Fatalf("foreign payment: expected %d got %d", fiber.StatusForbidden, status)
	}

	status, out = (call{method: fiber.MethodGet, path: "/api/v1/cards/" + cardID + "/transactions", user: "alice"}).do(t, app)
	if status != fiber.StatusOK {
		t.Fatalf("transactions: %d %v", status, out)
	}
	if txs, _ := out["transactions"].([]any); len(txs) != 1 {
		t.Fatalf("expected one transaction, got %v", out["transactions"])
	}

	status, out = (call{method: fiber.MethodGet, path: "/api/v1/cards", user: "alice"}).do(t, app)
	cards, _ := out["cards"].([]any)
	if status != fiber.StatusOK || len(cards) != 1 {
		t.Fatalf("cards: %d %v", status, out)
	}
	if first, _ := cards[0].(map[string]any); first["balance"] != "70.0000" {
		t.Fatalf("expected balance 70.0000, got %v", first["balance"])
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	if status, _ := (call{method: fiber.MethodPost, path: "/api/v1/admin/banks", body: `{"name":"NBU"}`}).do(t, app); status != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, status)
	}
	if status, _ := (call{method: fiber.MethodPost, path: "/api/v1/admin/banks", body: `{"name":"NBU"}`, admin: true}).do(t, app); status != fiber.StatusCreated {
		t.Fatalf("admin routes must not require a user identity, got %d", status)
	}
	if status, _ := (call{method: fiber.MethodGet, path: "/api/v1/cards"}).do(t, app); status != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, status)
	}
}

func TestHealthzWithoutBackends(t *testing.T) {
	app := setupApp(t)
	status, out := (call{method: fiber.MethodGet, path: "/healthz"}).do(t, app)
	if status != fiber.StatusOK {
		t.Fatalf("expected %d got %d: %v", fiber.StatusOK, status, out)
	}
}

func TestSetupRequiresBackendsOutsideDevelopment(t *testing.T) {
	err := Setup(fiber.New(), Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	if err == nil {
		t.Fatal("expected error without database in production")
	}
}
