package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"PosTerminal/app/api"
	"PosTerminal/app/database"
	"PosTerminal/app/models"
)

type fakeIdentity struct {
	id   int
	name string
}

func (f fakeIdentity) CurrentUserID() int      { return f.id }
func (f fakeIdentity) CurrentUserName() string { return f.name }

func testStore(t *testing.T) *database.LocalStore {
	t.Helper()
	t.Setenv("APPDATA", t.TempDir())
	store, err := database.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestDraft(t *testing.T, handler http.Handler) (*DraftService, *database.LocalStore, *int64) {
	t.Helper()

	var requests int64
	var server *httptest.Server
	if handler != nil {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			handler.ServeHTTP(w, r)
		}))
	} else {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			w.Write([]byte(`{}`))
		}))
	}
	t.Cleanup(server.Close)

	store := testStore(t)
	client := api.NewClient(server.URL, nil)
	draft := NewDraftService(client, fakeIdentity{id: 7, name: "cashier"}, store, NewLoggerService())
	return draft, store, &requests
}

func line(itemID, qty int, price string) models.DraftLine {
	return models.DraftLine{
		ItemID:    itemID,
		StockID:   itemID + 100,
		SKU:       "SKU",
		Name:      "Item",
		UnitPrice: decimal.RequireFromString(price),
		Qty:       qty,
	}
}

func TestAddItemMergesByItem(t *testing.T) {
	draft, _, _ := newTestDraft(t, nil)

	draft.AddItem(line(1, 2, "10"))
	draft.AddItem(line(1, 3, "10"))
	draft.AddItem(line(2, 1, "4"))

	lines := draft.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ItemID != 1 || lines[0].Qty != 5 {
		t.Errorf("merged line = %+v, want item 1 qty 5", lines[0])
	}
}

func TestSetItemQuantityCoercion(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"7", 7},
		{" 3 ", 3},
		{"0", 1},
		{"", 1},
		{"-5", 1},
		{"abc", 1},
	}

	for _, tc := range cases {
		draft, _, _ := newTestDraft(t, nil)
		draft.AddItem(line(1, 2, "10"))
		draft.SetItemQuantity(1, tc.input)
		if got := draft.Lines()[0].Qty; got != tc.want {
			t.Errorf("SetItemQuantity(%q): qty = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestTotals(t *testing.T) {
	draft, _, _ := newTestDraft(t, nil)
	draft.AddItem(line(1, 2, "10")) // 20
	draft.AddItem(line(2, 1, "5"))  // 5

	totals := draft.Totals()
	if !totals.Subtotal.Equal(decimal.RequireFromString("25")) {
		t.Errorf("Subtotal = %s, want 25", totals.Subtotal)
	}
	if totals.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", totals.ItemCount)
	}

	draft.SetDiscount(models.DiscountPercentage, 10)
	totals = draft.Totals()
	if !totals.Discount.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("percentage Discount = %s, want 2.5", totals.Discount)
	}
	if !totals.Total.Equal(decimal.RequireFromString("22.5")) {
		t.Errorf("percentage Total = %s, want 22.5", totals.Total)
	}

	draft.SetDiscount(models.DiscountFixed, 4)
	totals = draft.Totals()
	if !totals.Discount.Equal(decimal.RequireFromString("4")) {
		t.Errorf("fixed Discount = %s, want 4", totals.Discount)
	}
	if !totals.Total.Equal(decimal.RequireFromString("21")) {
		t.Errorf("fixed Total = %s, want 21", totals.Total)
	}
}

func TestRemoveItemTwoStep(t *testing.T) {
	draft, _, _ := newTestDraft(t, nil)
	draft.AddItem(line(1, 1, "10"))
	draft.AddItem(line(2, 1, "5"))

	draft.RequestRemoveItem(1)
	draft.DismissRemoveItem()
	if len(draft.Lines()) != 2 {
		t.Fatal("dismiss must not remove the line")
	}

	draft.RequestRemoveItem(1)
	draft.ConfirmRemoveItem()
	lines := draft.Lines()
	if len(lines) != 1 || lines[0].ItemID != 2 {
		t.Errorf("after confirm: %+v", lines)
	}

	// Confirm with nothing pending is a no-op
	draft.ConfirmRemoveItem()
	if len(draft.Lines()) != 1 {
		t.Error("confirm without request removed a line")
	}
}

func TestBoxQuantity(t *testing.T) {
	draft, _, _ := newTestDraft(t, nil)

	if got := draft.BoxQuantity(); got != "0" {
		t.Errorf("initial BoxQuantity = %q, want 0", got)
	}

	draft.SetBoxQuantity("1a2b")
	if got := draft.BoxQuantity(); got != "12" {
		t.Errorf("digits filter = %q, want 12", got)
	}

	draft.SetBoxQuantity("xyz")
	if got := draft.BoxQuantity(); got != "0" {
		t.Errorf("no digits = %q, want 0", got)
	}

	draft.IncrementBoxQuantity()
	draft.IncrementBoxQuantity()
	if got := draft.BoxQuantity(); got != "2" {
		t.Errorf("after two increments = %q, want 2", got)
	}

	draft.DecrementBoxQuantity()
	draft.DecrementBoxQuantity()
	draft.DecrementBoxQuantity()
	if got := draft.BoxQuantity(); got != "0" {
		t.Errorf("decrement floor = %q, want 0", got)
	}
}

func TestDisplayInvoiceNumber(t *testing.T) {
	draft, _, _ := newTestDraft(t, nil)

	if got := draft.DisplayInvoiceNumber(); got != "AUTO" {
		t.Errorf("empty draft = %q, want AUTO", got)
	}

	// Customer alone is not enough for a provisional number
	draft.SelectCustomer(models.Customer{ID: 1, FirstName: "A"})
	if got := draft.DisplayInvoiceNumber(); got != "AUTO" {
		t.Errorf("customer only = %q, want AUTO", got)
	}

	draft.AddItem(line(1, 1, "10"))
	got := draft.DisplayInvoiceNumber()
	if !strings.HasPrefix(got, "INV-") {
		t.Errorf("customer+item = %q, want INV- prefix", got)
	}

	// Emptying the draft reverts the provisional number
	draft.RequestRemoveItem(1)
	draft.ConfirmRemoveItem()
	if got := draft.DisplayInvoiceNumber(); got != "AUTO" {
		t.Errorf("emptied draft = %q, want AUTO", got)
	}
}

func TestSendValidatesBeforeNetwork(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(d *DraftService)
		wantErr string
	}{
		{
			"no customer",
			func(d *DraftService) {},
			"customer",
		},
		{
			"no items",
			func(d *DraftService) {
				d.SelectCustomer(models.Customer{ID: 1})
			},
			"item",
		},
		{
			"zero box qty",
			func(d *DraftService) {
				d.SelectCustomer(models.Customer{ID: 1})
				d.AddItem(line(1, 1, "10"))
			},
			"Bag/Box",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft, _, requests := newTestDraft(t, nil)
			tc.prepare(draft)

			_, err := draft.Send(context.Background())
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tc.wantErr)
			}
			if atomic.LoadInt64(requests) != 0 {
				t.Errorf("%d requests sent before validation passed", *requests)
			}
		})
	}
}

func TestSendSuccess(t *testing.T) {
	var itemPosts int64
	var patched int64
	var createPayload models.CreateInvoicePayload
	var itemPayload models.AddInvoiceItemPayload
	var itemBody map[string]interface{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/pos/invoice":
			json.NewDecoder(r.Body).Decode(&createPayload)
			w.Write([]byte(`{"data":{"id":42,"invoice_no":"INV-0042","status":"PENDING"}}`))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/item"):
			atomic.AddInt64(&itemPosts, 1)
			raw, _ := io.ReadAll(r.Body)
			json.Unmarshal(raw, &itemPayload)
			json.Unmarshal(raw, &itemBody)
			w.Write([]byte(`{}`))
		case r.Method == http.MethodPatch:
			atomic.AddInt64(&patched, 1)
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.Write([]byte(`{}`))
		}
	})

	draft, store, _ := newTestDraft(t, handler)
	draft.SelectCustomer(models.Customer{ID: 3, FirstName: "Maya"})
	draft.AddItem(line(1, 2, "10"))
	draft.AddItem(line(2, 1, "5"))
	draft.SetBoxQuantity("2")

	number, err := draft.Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if number != "INV-0042" {
		t.Errorf("number = %q, want INV-0042", number)
	}

	if createPayload.CustomerID != 3 || createPayload.CreatedUserID != 7 {
		t.Errorf("create payload = %+v", createPayload)
	}
	if createPayload.Status != models.StatusPending {
		t.Errorf("create status = %q, want PENDING", createPayload.Status)
	}
	if createPayload.NextBoxNumber != 2 {
		t.Errorf("next_box_number = %d, want 2", createPayload.NextBoxNumber)
	}
	if createPayload.TotalAmount != 25 {
		t.Errorf("total_amount = %v, want 25", createPayload.TotalAmount)
	}

	// The discount type always travels, even with no discount set
	if createPayload.DiscountType != "PERCENTAGE" {
		t.Errorf("create discount_type = %q, want PERCENTAGE", createPayload.DiscountType)
	}
	if atomic.LoadInt64(&itemPosts) != 2 {
		t.Errorf("item posts = %d, want 2", itemPosts)
	}
	if itemPayload.DiscountType != "PERCENTAGE" {
		t.Errorf("item discount_type = %q, want PERCENTAGE", itemPayload.DiscountType)
	}
	if v, ok := itemBody["discount_amount"]; !ok || v != float64(0) {
		t.Errorf("item discount_amount = %v, want explicit 0", v)
	}
	if atomic.LoadInt64(&patched) != 1 {
		t.Errorf("status patches = %d, want 1", patched)
	}

	// State cleared, confirmation number retained
	if len(draft.Lines()) != 0 {
		t.Error("lines survived send")
	}
	if draft.Customer() != nil {
		t.Error("customer survived send")
	}
	if got := draft.DisplayInvoiceNumber(); got != "PENDING: INV-0042" {
		t.Errorf("DisplayInvoiceNumber = %q", got)
	}

	// Any stashed offline draft is cleared by a successful send
	if blob, _ := store.GetValue(database.KeyOfflineDraft); blob != "" {
		t.Error("offline stash survived send")
	}
}

func TestCancelAfterSendLeavesInvoiceAlone(t *testing.T) {
	var cancelPatches int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/pos/invoice":
			w.Write([]byte(`{"data":{"id":42,"invoice_no":"INV-0042"}}`))
		case r.Method == http.MethodPatch:
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if status, _ := body["status"].(string); strings.HasPrefix(status, "CANCEL") {
				atomic.AddInt64(&cancelPatches, 1)
			}
			w.Write([]byte(`{}`))
		default:
			w.Write([]byte(`{}`))
		}
	})

	draft, _, _ := newTestDraft(t, handler)
	draft.SelectCustomer(models.Customer{ID: 3})
	draft.AddItem(line(1, 1, "10"))
	draft.SetBoxQuantity("1")

	if _, err := draft.Send(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// A sent invoice is done; cancelling the empty screen afterwards
	// must not void it on the backend.
	draft.Cancel(context.Background())

	if got := atomic.LoadInt64(&cancelPatches); got != 0 {
		t.Errorf("cancel patches after send = %d, want 0", got)
	}
}

func TestSendFailureKeepsState(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"backend down"}`))
	})

	draft, _, _ := newTestDraft(t, handler)
	draft.SelectCustomer(models.Customer{ID: 3})
	draft.AddItem(line(1, 1, "10"))
	draft.SetBoxQuantity("1")

	_, err := draft.Send(context.Background())
	if err == nil || !strings.Contains(err.Error(), "backend down") {
		t.Fatalf("err = %v, want backend message surfaced", err)
	}

	if len(draft.Lines()) != 1 || draft.Customer() == nil {
		t.Error("failed send must leave the draft intact")
	}
}

func TestCancelTriesBothSpellingsAndClears(t *testing.T) {
	var patchBodies []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			var fields map[string]interface{}
			json.NewDecoder(r.Body).Decode(&fields)
			status, _ := fields["status"].(string)
			patchBodies = append(patchBodies, status)
			if status == models.StatusCancelled {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"unknown status"}`))
				return
			}
			w.Write([]byte(`{}`))
			return
		}
		// Recall detail fetch
		w.Write([]byte(`{"data":{"id":55,"invoice_no":"INV-55","status":"PENDING","invoice_items":[{"stock_id":9,"quantity":1,"selling_price":10}]}}`))
	})

	draft, _, _ := newTestDraft(t, handler)
	draft.Recall(context.Background(), models.Invoice{ID: 55, Status: "PENDING"})

	draft.Cancel(context.Background())

	if len(patchBodies) != 2 || patchBodies[0] != "CANCELLED" || patchBodies[1] != "CANCELED" {
		t.Errorf("patches = %v, want [CANCELLED CANCELED]", patchBodies)
	}
	if len(draft.Lines()) != 0 || draft.Customer() != nil {
		t.Error("cancel must clear the draft")
	}
	if got := draft.DisplayInvoiceNumber(); got != "AUTO" {
		t.Errorf("DisplayInvoiceNumber = %q, want AUTO", got)
	}
}

func TestCancelWithNoBackendInvoiceJustClears(t *testing.T) {
	draft, _, requests := newTestDraft(t, nil)
	draft.SelectCustomer(models.Customer{ID: 1})
	draft.AddItem(line(1, 1, "10"))

	draft.Cancel(context.Background())

	if atomic.LoadInt64(requests) != 0 {
		t.Errorf("%d requests for a draft that was never persisted", *requests)
	}
	if len(draft.Lines()) != 0 {
		t.Error("cancel must clear the draft")
	}
}

func TestRecallRemapsLines(t *testing.T) {
	price := decimal.RequireFromString("12.5")
	qty := decimal.RequireFromString("3")
	paid := decimal.RequireFromString("5")
	boxes := decimal.RequireFromString("2")

	invoice := models.Invoice{
		ID:            77,
		InvoiceNo:     "INV-77",
		Status:        "SENT",
		PaidAmount:    &paid,
		NextBoxNumber: &boxes,
		Customer:      &models.Customer{ID: 4, FirstName: "Ben"},
		Items: []models.InvoiceItem{
			{
				ID:           900,
				StockID:      15,
				Quantity:     &qty,
				SellingPrice: &price,
				Stock:        &models.Stock{ID: 15, SKU: "AB-1", Name: "Widget", Description: "Blue"},
			},
			{
				ID: 901,
				// No stock embed, no display fields
			},
		},
	}

	draft, _, requests := newTestDraft(t, nil)
	draft.Recall(context.Background(), invoice)

	// Items were present, so no detail fetch
	if atomic.LoadInt64(requests) != 0 {
		t.Errorf("unexpected fetch during recall: %d requests", *requests)
	}

	lines := draft.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	first := lines[0]
	if first.ItemID != 15 || first.SKU != "AB-1" || first.Name != "Widget" || first.Description != "Blue" {
		t.Errorf("remapped line = %+v", first)
	}
	if first.Qty != 3 || !first.UnitPrice.Equal(price) {
		t.Errorf("qty/price = %d/%s", first.Qty, first.UnitPrice)
	}

	second := lines[1]
	if second.SKU != "N/A" || second.Name != "Unknown Item" {
		t.Errorf("fallback line = %+v", second)
	}

	if got := draft.BoxQuantity(); got != "2" {
		t.Errorf("BoxQuantity = %q, want 2", got)
	}
	if got := draft.DisplayInvoiceNumber(); got != "INV-77" {
		t.Errorf("DisplayInvoiceNumber = %q, want INV-77", got)
	}
	if draft.Customer() == nil || draft.Customer().ID != 4 {
		t.Errorf("customer = %+v", draft.Customer())
	}
}

func TestPersistWithoutCustomerStashesLocally(t *testing.T) {
	draft, store, requests := newTestDraft(t, nil)
	draft.AddItem(line(1, 2, "10"))
	draft.SetBoxQuantity("1")

	draft.PersistActiveDraft(context.Background(), "back")

	if atomic.LoadInt64(requests) != 0 {
		t.Errorf("%d requests for a customer-less draft", *requests)
	}

	blob, err := store.GetValue(database.KeyOfflineDraft)
	if err != nil || blob == "" {
		t.Fatalf("no offline stash written: %v", err)
	}

	var stash models.OfflineDraft
	if err := json.Unmarshal([]byte(blob), &stash); err != nil {
		t.Fatalf("stash decode: %v", err)
	}
	if stash.Reason != "back" || len(stash.Items) != 1 || stash.BoxQty != "1" {
		t.Errorf("stash = %+v", stash)
	}
}

func TestPersistWithCustomerCreatesActiveInvoice(t *testing.T) {
	var createPayload models.CreateInvoicePayload
	var createStatus string
	var itemPosts int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/pos/invoice":
			json.NewDecoder(r.Body).Decode(&createPayload)
			createStatus = createPayload.Status
			w.Write([]byte(`{"id":60}`))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/item"):
			atomic.AddInt64(&itemPosts, 1)
			w.Write([]byte(`{}`))
		default:
			w.Write([]byte(`{}`))
		}
	})

	draft, store, _ := newTestDraft(t, handler)
	draft.SelectCustomer(models.Customer{ID: 2})
	draft.AddItem(line(1, 1, "10"))
	draft.SetDiscount(models.DiscountFixed, 2)
	draft.SetPaidAmount(5)

	draft.PersistActiveDraft(context.Background(), "unmount")

	if createStatus != models.StatusActive {
		t.Errorf("create status = %q, want ACTIVE", createStatus)
	}

	// Paid amount and discount ride along so a recalled recovery draft
	// does not lose them
	if createPayload.PaidAmount == nil || *createPayload.PaidAmount != 5 {
		t.Errorf("paid_amount = %v, want 5", createPayload.PaidAmount)
	}
	if createPayload.DiscountType != string(models.DiscountFixed) {
		t.Errorf("discount_type = %q, want fixed", createPayload.DiscountType)
	}
	if createPayload.DiscountAmount == nil || *createPayload.DiscountAmount != 2 {
		t.Errorf("discount_amount = %v, want 2", createPayload.DiscountAmount)
	}
	if atomic.LoadInt64(&itemPosts) != 1 {
		t.Errorf("item posts = %d, want 1", itemPosts)
	}
	if blob, _ := store.GetValue(database.KeyOfflineDraft); blob != "" {
		t.Error("offline stash left behind after backend save")
	}

	// A second persist is a no-op once finalized
	draft.PersistActiveDraft(context.Background(), "unmount")
	if createStatus != models.StatusActive {
		t.Errorf("unexpected second create")
	}
}

func TestPersistSkipsEmptyAndFinalized(t *testing.T) {
	draft, store, requests := newTestDraft(t, nil)

	draft.PersistActiveDraft(context.Background(), "back")
	if atomic.LoadInt64(requests) != 0 {
		t.Error("empty draft must not persist")
	}
	if blob, _ := store.GetValue(database.KeyOfflineDraft); blob != "" {
		t.Error("empty draft must not stash")
	}
}

func TestRecoverOfflineDraft(t *testing.T) {
	draft, _, _ := newTestDraft(t, nil)
	draft.AddItem(line(1, 2, "10"))
	draft.SetBoxQuantity("3")
	draft.PersistActiveDraft(context.Background(), "back")

	restored, _, _ := newTestDraftSharing(t, draft)
	ok, err := restored.RecoverOfflineDraft()
	if err != nil || !ok {
		t.Fatalf("RecoverOfflineDraft: ok=%v err=%v", ok, err)
	}

	lines := restored.Lines()
	if len(lines) != 1 || lines[0].Qty != 2 {
		t.Errorf("restored lines = %+v", lines)
	}
	if got := restored.BoxQuantity(); got != "3" {
		t.Errorf("restored BoxQuantity = %q, want 3", got)
	}

	// Stash is consumed
	again, err := restored.LoadOfflineDraft()
	if err != nil || again != nil {
		t.Errorf("stash survived recovery: %+v err=%v", again, err)
	}
}

// newTestDraftSharing builds a second draft service over the same local
// store, simulating an app restart.
func newTestDraftSharing(t *testing.T, other *DraftService) (*DraftService, *database.LocalStore, *int64) {
	t.Helper()
	var requests int64
	draft := NewDraftService(other.client, other.identity, other.store, other.logger)
	return draft, other.store, &requests
}
