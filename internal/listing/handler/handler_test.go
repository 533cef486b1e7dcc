package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	listingservice "rently/internal/listing/service"
	liststore "rently/internal/listing/store/listing"
	historystore "rently/internal/listing/store/renthistory"
	usermodels "rently/internal/user/models"
	userstore "rently/internal/user/store/user"
	id "rently/pkg/domain"
)

const adminToken = "secret-token"

// stubValidator treats the bearer token as the user ID itself so tests do not
// need to mint real JWTs.
type stubValidator struct{}

func (stubValidator) Validate(token string) (id.UserID, error) {
	return id.ParseUserID(token)
}

func TestAuthRequiredOnCreate(t *testing.T) {
	router, _ := newListingRouter(t)

	body, _ := json.Marshal(map[string]any{"title": "Flat", "location": "Springfield", "contact_number": "555-0101"})
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body))
	// No Authorization header set
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when bearer token missing, got %d", rec.Code)
	}
}

func TestAdminTokenRequiredOnDelete(t *testing.T) {
	router, owner := newListingRouter(t)
	listingID := createListing(t, router, owner, "Gated")

	req := httptest.NewRequest(http.MethodDelete, "/listings/"+listingID, nil)
	// No admin token header set
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when admin token missing, got %d", rec.Code)
	}
}

func TestCreateAndBrowseViaHandlers(t *testing.T) {
	router, owner := newListingRouter(t)

	payload := map[string]any{
		"title":          "Sunny two-bed",
		"location":       "Springfield",
		"bedrooms":       2,
		"bathrooms":      1,
		"contact_number": "555-0101",
		"price_cents":    125000,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+owner.ID.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating listing, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID        string `json:"id"`
		OwnerName string `json:"owner_name"`
		Available bool   `json:"available"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected listing id in response")
	}
	if created.OwnerName != owner.Name {
		t.Fatalf("expected owner_name %q, got %q", owner.Name, created.OwnerName)
	}
	if !created.Available {
		t.Fatalf("expected new listing to be available")
	}

	browseReq := httptest.NewRequest(http.MethodGet, "/listings", nil)
	browseRec := httptest.NewRecorder()
	router.ServeHTTP(browseRec, browseReq)
	if browseRec.Code != http.StatusOK {
		t.Fatalf("expected 200 browsing listings, got %d", browseRec.Code)
	}

	var listings []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(browseRec.Body).Decode(&listings); err != nil {
		t.Fatalf("failed to decode browse response: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != created.ID {
		t.Fatalf("expected browse to return the created listing, got %+v", listings)
	}
}

func TestCreateValidation(t *testing.T) {
	router, owner := newListingRouter(t)

	body, _ := json.Marshal(map[string]any{"title": "   ", "location": "Springfield", "contact_number": "555-0101"})
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+owner.ID.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", rec.Code)
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Error == "" {
		t.Fatalf("expected error code in envelope")
	}
}

func TestConfirmRentViaHandlers(t *testing.T) {
	router, owner := newListingRouter(t)
	renter := seedRouterUser(t, router, "Rami", "rami@example.com")
	loser := seedRouterUser(t, router, "Lena", "lena@example.com")
	listingID := createListing(t, router, owner, "Contested flat")

	rentReq := httptest.NewRequest(http.MethodPost, "/listings/"+listingID+"/rent", nil)
	rentReq.Header.Set("Authorization", "Bearer "+renter.ID.String())
	rentRec := httptest.NewRecorder()
	router.ServeHTTP(rentRec, rentReq)
	if rentRec.Code != http.StatusOK {
		t.Fatalf("expected 200 confirming rent, got %d: %s", rentRec.Code, rentRec.Body.String())
	}

	var record struct {
		ListingID string    `json:"listing_id"`
		Title     string    `json:"title"`
		RentedAt  time.Time `json:"rented_at"`
	}
	if err := json.NewDecoder(rentRec.Body).Decode(&record); err != nil {
		t.Fatalf("failed to decode rent response: %v", err)
	}
	if record.ListingID != listingID || record.Title != "Contested flat" {
		t.Fatalf("unexpected rent record: %+v", record)
	}

	// Second renter loses the race.
	loseReq := httptest.NewRequest(http.MethodPost, "/listings/"+listingID+"/rent", nil)
	loseReq.Header.Set("Authorization", "Bearer "+loser.ID.String())
	loseRec := httptest.NewRecorder()
	router.ServeHTTP(loseRec, loseReq)
	if loseRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second rent, got %d", loseRec.Code)
	}

	historyReq := httptest.NewRequest(http.MethodGet, "/me/rent-history", nil)
	historyReq.Header.Set("Authorization", "Bearer "+renter.ID.String())
	historyRec := httptest.NewRecorder()
	router.ServeHTTP(historyRec, historyReq)
	if historyRec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching rent history, got %d", historyRec.Code)
	}

	var history []struct {
		ListingID string `json:"listing_id"`
	}
	if err := json.NewDecoder(historyRec.Body).Decode(&history); err != nil {
		t.Fatalf("failed to decode history response: %v", err)
	}
	if len(history) != 1 || history[0].ListingID != listingID {
		t.Fatalf("expected one history record for the rented listing, got %+v", history)
	}
}

func TestDeleteViaHandlers(t *testing.T) {
	router, owner := newListingRouter(t)
	listingID := createListing(t, router, owner, "Doomed")

	req := httptest.NewRequest(http.MethodDelete, "/listings/"+listingID, nil)
	req.Header.Set("X-Admin-Token", adminToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting listing, got %d", rec.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/listings/"+listingID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", getRec.Code)
	}
}

type listingRouter struct {
	http.Handler
	users *userstore.InMemory
}

func newListingRouter(t *testing.T) (*listingRouter, *usermodels.User) {
	t.Helper()
	users := userstore.NewInMemory()
	svc := listingservice.New(liststore.NewInMemory(), historystore.NewInMemory(), users)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash admin token: %v", err)
	}

	h := New(svc, logger, stubValidator{}, string(hash))
	r := chi.NewRouter()
	h.Register(r)

	router := &listingRouter{Handler: r, users: users}
	owner := seedRouterUser(t, router, "Olive", "olive@example.com")
	return router, owner
}

func seedRouterUser(t *testing.T, router *listingRouter, name, email string) *usermodels.User {
	t.Helper()
	user, err := usermodels.NewUser(id.NewUserID(), name, email, time.Now())
	if err != nil {
		t.Fatalf("failed to build user: %v", err)
	}
	if err := router.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func createListing(t *testing.T, router *listingRouter, owner *usermodels.User, title string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"title":          title,
		"location":       "Springfield",
		"contact_number": "555-0101",
		"price_cents":    100000,
	})
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+owner.ID.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating listing, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	return resp.ID
}
