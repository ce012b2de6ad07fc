package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cartsvc "github.com/angelmondragon/tableside-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

type stubCartService struct {
	cart       *cartsvc.CartDTO
	item       *cartsvc.CartItemDTO
	err        error
	gotOpenID  string
	gotWP      string
	gotAdd     cartsvc.AddItemInput
	gotRecount cartsvc.RecountInput
	gotRemove  [2]int64
}

func (s *stubCartService) GetOrCreateCart(_ context.Context, openID, wpOpenID string) (*cartsvc.CartDTO, error) {
	s.gotOpenID, s.gotWP = openID, wpOpenID
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, openID, wpOpenID string, input cartsvc.AddItemInput) (*cartsvc.CartItemDTO, error) {
	s.gotOpenID, s.gotWP, s.gotAdd = openID, wpOpenID, input
	return s.item, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, openID, wpOpenID string, cartID, cartItemID int64) (*cartsvc.CartDTO, error) {
	s.gotOpenID, s.gotWP = openID, wpOpenID
	s.gotRemove = [2]int64{cartID, cartItemID}
	return s.cart, s.err
}

func (s *stubCartService) RecountItem(_ context.Context, openID, wpOpenID string, input cartsvc.RecountInput) (*cartsvc.CartItemDTO, error) {
	s.gotOpenID, s.gotWP, s.gotRecount = openID, wpOpenID, input
	return s.item, s.err
}

func (s *stubCartService) PurgeStale(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return payload.Error.Code, payload.Error.Message
}

func TestCartFetchPassesQueryIdentifiers(t *testing.T) {
	svc := &stubCartService{cart: &cartsvc.CartDTO{ID: 5, Price: "0.00"}}
	req := httptest.NewRequest(http.MethodGet, "/cart?openid=rest-1&wp_openid=wx-1", nil)
	rec := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotOpenID != "rest-1" || svc.gotWP != "wx-1" {
		t.Fatalf("unexpected identifiers %q %q", svc.gotOpenID, svc.gotWP)
	}
	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.ID != 5 {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}
}

func TestCartFetchUnknownMemberIs400(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeInvalidReference, "param error: no member found")}
	rec := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart?openid=r&wp_openid=missing", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if _, msg := decodeError(t, rec); msg != "param error: no member found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCartAddItemReturns202(t *testing.T) {
	svc := &stubCartService{item: &cartsvc.CartItemDTO{ID: 9, Count: 3}}
	req := httptest.NewRequest(http.MethodPost, "/cart/item?openid=r&wp_openid=m", strings.NewReader(`{"product":4,"count":3}`))
	rec := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rec.Code)
	}
	if svc.gotAdd.ProductID != 4 || svc.gotAdd.Count != 3 {
		t.Fatalf("unexpected input %+v", svc.gotAdd)
	}
}

func TestCartAddItemLeavesFieldChecksToService(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeInvalidReference, "param error: no cart found")}
	req := httptest.NewRequest(http.MethodPost, "/cart/item?openid=r&wp_openid=m", strings.NewReader(`{"product":4,"count":0}`))
	rec := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if _, msg := decodeError(t, rec); msg != "param error: no cart found" {
		t.Fatalf("missing cart must be reported first, got %q", msg)
	}
}

func TestCartAddItemMalformedBody(t *testing.T) {
	svc := &stubCartService{}
	req := httptest.NewRequest(http.MethodPost, "/cart/item?openid=r&wp_openid=m", strings.NewReader(`{"product":"x"`))
	rec := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if code, _ := decodeError(t, rec); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestCartRemoveItemParsesIDs(t *testing.T) {
	svc := &stubCartService{cart: &cartsvc.CartDTO{ID: 2}}
	req := httptest.NewRequest(http.MethodPost, "/cart/item/remove?openid=r&wp_openid=m&cart_id=2&cart_item_id=11", nil)
	rec := httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotRemove != [2]int64{2, 11} {
		t.Fatalf("unexpected ids %v", svc.gotRemove)
	}

	bad := httptest.NewRequest(http.MethodPost, "/cart/item/remove?openid=r&wp_openid=m&cart_id=two&cart_item_id=11", nil)
	rec = httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(rec, bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed cart_id, got %d", rec.Code)
	}
}

func TestCartRecountMissingItemIs404(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")}
	req := httptest.NewRequest(http.MethodPost, "/cart/item/recount?openid=r&wp_openid=m", strings.NewReader(`{"cart_item":99,"count":2}`))
	rec := httptest.NewRecorder()
	CartRecountItem(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.gotRecount.CartItemID != 99 || svc.gotRecount.Count != 2 {
		t.Fatalf("unexpected input %+v", svc.gotRecount)
	}
}

func TestCartRecountReturns202(t *testing.T) {
	svc := &stubCartService{item: &cartsvc.CartItemDTO{ID: 99, Count: 2}}
	req := httptest.NewRequest(http.MethodPost, "/cart/item/recount?openid=r&wp_openid=m", strings.NewReader(`{"cart_item":99,"count":2}`))
	rec := httptest.NewRecorder()
	CartRecountItem(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rec.Code)
	}
}
