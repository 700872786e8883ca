package accounts

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/uz-pay/uz_pay/internal/card"
	"github.com/uz-pay/uz_pay/internal/ledger"
	"github.com/uz-pay/uz_pay/internal/logging"
	"github.com/uz-pay/uz_pay/internal/transaction"
)

func setupHandlerApp(t *testing.T) (*fiber.App, ledger.Ledger) {
	t.Helper()
	led := ledger.NewInMemory()
	h := NewHandler(NewCatalog(led, logging.Discard()), led)

	app := fiber.New()
	withUser := func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-User-ID"))
		return c.Next()
	}
	app.Get("/cards", withUser, h.MyCards)
	app.Get("/cards/:cardId/transactions", withUser, h.CardTransactions)
	app.Post("/admin/banks", h.CreateBank)
	app.Post("/admin/cards", h.CreateCard)
	app.Put("/admin/cards/:cardId/owner", h.AssignOwner)
	app.Delete("/admin/cards/:cardId/owner", h.ReleaseOwner)
	return app, led
}

func do(t *testing.T, app *fiber.App, method, path, userID, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func TestAdminCardLifecycle(t *testing.T) {
	app, _ := setupHandlerApp(t)

	status, body := do(t, app, fiber.MethodPost, "/admin/banks", "", `{"name":"Agrobank"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create bank: expected %d got %d: %s", fiber.StatusCreated, status, body)
	}
	var bank struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &bank); err != nil {
		t.Fatalf("decode bank: %v", err)
	}

	cardBody := `{"number":"8600555566667777","type":"HUMO","bank_id":"` + bank.ID + `","expiration_date":"01/30"}`
	status, body = do(t, app, fiber.MethodPost, "/admin/cards", "", cardBody)
	if status != fiber.StatusCreated {
		t.Fatalf("create card: expected %d got %d: %s", fiber.StatusCreated, status, body)
	}
	var created CardResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if created.Number != "8600********7777" || created.Balance != "0.0000" || created.Currency != "UZS" {
		t.Fatalf("unexpected card: %+v", created)
	}

	if status, _ := do(t, app, fiber.MethodPost, "/admin/cards", "", cardBody); status != fiber.StatusConflict {
		t.Fatalf("duplicate number: expected %d got %d", fiber.StatusConflict, status)
	}
	badNumber := strings.Replace(cardBody, "8600555566667777", "8600-5555-6666-7777", 1)
	if status, _ := do(t, app, fiber.MethodPost, "/admin/cards", "", badNumber); status != fiber.StatusBadRequest {
		t.Fatalf("bad number: expected %d got %d", fiber.StatusBadRequest, status)
	}

	ownerPath := "/admin/cards/" + created.ID + "/owner"
	if status, _ := do(t, app, fiber.MethodPut, ownerPath, "", `{"user_id":"alice"}`); status != fiber.StatusNoContent {
		t.Fatalf("assign: expected %d got %d", fiber.StatusNoContent, status)
	}
	if status, _ := do(t, app, fiber.MethodPut, ownerPath, "", `{"user_id":"bob"}`); status != fiber.StatusConflict {
		t.Fatalf("conflicting assign: expected %d got %d", fiber.StatusConflict, status)
	}

	status, body = do(t, app, fiber.MethodGet, "/cards", "alice", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), created.ID) {
		t.Fatalf("list cards: %d %s", status, body)
	}

	if status, _ := do(t, app, fiber.MethodDelete, ownerPath, "", ""); status != fiber.StatusNoContent {
		t.Fatalf("release: expected %d got %d", fiber.StatusNoContent, status)
	}
	if status, _ := do(t, app, fiber.MethodPut, ownerPath, "", `{"user_id":"bob"}`); status != fiber.StatusNoContent {
		t.Fatalf("assign after release: expected %d got %d", fiber.StatusNoContent, status)
	}
}

func TestCardTransactionsRequiresOwner(t *testing.T) {
	app, led := setupHandlerApp(t)
	ctx := context.Background()
	c := newOwnedCard(t, led, "alice")
	ledger.SeedBalance(led, c, decimal.RequireFromString("10"))

	if _, _, err := led.Charge(ctx, ledger.Charge{
		CardID:   c,
		Amount:   decimal.RequireFromString("2.50"),
		Currency: ledger.DefaultCurrency,
		Record: transaction.Record{UserID: "alice", MerchantID: "m-1", DeviceID: "d-1", Details: transaction.PhonePayment{PhoneNumber: "+998900000000"}},
	}); err != nil {
		t.Fatalf("charge: %v", err)
	}

	status, body := do(t, app, fiber.MethodGet, "/cards/"+c+"/transactions", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected %d got %d: %s", fiber.StatusOK, status, body)
	}
	var page struct {
		Transactions []transaction.Response `json:"transactions"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Transactions) != 1 || page.Transactions[0].Amount != "2.50" {
		t.Fatalf("unexpected journal: %+v", page.Transactions)
	}

	if status, _ := do(t, app, fiber.MethodGet, "/cards/"+c+"/transactions", "mallory", ""); status != fiber.StatusForbidden {
		t.Fatalf("expected %d got %d", fiber.StatusForbidden, status)
	}
	if status, _ := do(t, app, fiber.MethodGet, "/cards/unknown/transactions", "alice", ""); status != fiber.StatusNotFound {
		t.Fatalf("expected %d got %d", fiber.StatusNotFound, status)
	}
	if status, _ := do(t, app, fiber.MethodGet, "/cards/"+c+"/transactions?limit=zero", "alice", ""); status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
}

func newOwnedCard(t *testing.T, led ledger.Ledger, owner string) string {
	t.Helper()
	ctx := context.Background()
	bank, err := led.CreateBank(ctx, "Asakabank")
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}
	c, err := led.CreateCard(ctx, ledger.NewCard{Number: "9860777788889999", Type: card.TypeUzcard, BankID: bank.ID, Expiration: "07/27"})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	if err := led.AssignOwner(ctx, c.ID, owner); err != nil {
		t.Fatalf("assign owner: %v", err)
	}
	return c.ID
}

func TestMyCardsRendersFullBalanceScale(t *testing.T) {
	app, led := setupHandlerApp(t)
	c := newOwnedCard(t, led, "alice")
	if _, err := led.Credit(context.Background(), c, decimal.RequireFromString("0.0050"), ledger.DefaultCurrency); err != nil {
		t.Fatalf("credit: %v", err)
	}

	status, body := do(t, app, fiber.MethodGet, "/cards", "alice", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected %d got %d: %s", fiber.StatusOK, status, body)
	}
	var page struct {
		Cards []CardResponse `json:"cards"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Cards) != 1 || page.Cards[0].Balance != "0.0050" {
		t.Fatalf("expected balance 0.0050, got %+v", page.Cards)
	}
}
