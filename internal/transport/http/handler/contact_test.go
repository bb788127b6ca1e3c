package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/repository"
	"github.com/akravets/contacts-api/internal/transport/http/handler"
	"github.com/akravets/contacts-api/internal/transport/http/middleware"
	"github.com/akravets/contacts-api/internal/usecase"
)

type fakeContactUsecase struct {
	create            func(ctx context.Context, input usecase.ContactInput) (*domain.Contact, error)
	getByID           func(ctx context.Context, id, userID string) (*domain.Contact, error)
	list              func(ctx context.Context, input repository.ListContactsInput) ([]*domain.Contact, error)
	update            func(ctx context.Context, id string, input usecase.ContactInput) (*domain.Contact, error)
	updateDateOfBirth func(ctx context.Context, id, userID string, dob time.Time) (*domain.Contact, error)
	del               func(ctx context.Context, id, userID string) (*domain.Contact, error)
}

func (f *fakeContactUsecase) Create(ctx context.Context, input usecase.ContactInput) (*domain.Contact, error) {
	return f.create(ctx, input)
}

func (f *fakeContactUsecase) GetByID(ctx context.Context, id, userID string) (*domain.Contact, error) {
	return f.getByID(ctx, id, userID)
}

func (f *fakeContactUsecase) List(ctx context.Context, input repository.ListContactsInput) ([]*domain.Contact, error) {
	return f.list(ctx, input)
}

func (f *fakeContactUsecase) Update(ctx context.Context, id string, input usecase.ContactInput) (*domain.Contact, error) {
	return f.update(ctx, id, input)
}

func (f *fakeContactUsecase) UpdateDateOfBirth(ctx context.Context, id, userID string, dob time.Time) (*domain.Contact, error) {
	return f.updateDateOfBirth(ctx, id, userID, dob)
}

func (f *fakeContactUsecase) Delete(ctx context.Context, id, userID string) (*domain.Contact, error) {
	return f.del(ctx, id, userID)
}

// staticAuth resolves every bearer token to the same user.
type staticAuth struct {
	user *domain.User
}

func (a *staticAuth) CurrentUser(context.Context, string) (*domain.User, error) {
	return a.user, nil
}

var testUser = &domain.User{ID: "user-1", Email: "alice@example.com", Confirmed: true}

func contactEngine(uc *fakeContactUsecase) *gin.Engine {
	h := handler.NewContactHandler(uc, testLogger())
	authMW := middleware.Auth(&staticAuth{user: testUser})

	r := gin.New()
	g := r.Group("/api/contacts", authMW)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.UpdateDateOfBirth)
	g.DELETE("/:id", h.Delete)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer anything")
	r.ServeHTTP(w, req)
	return w
}

func sampleContact() *domain.Contact {
	email := "bob@example.com"
	return &domain.Contact{
		ID:          "c1",
		UserID:      testUser.ID,
		FirstName:   "Bob",
		LastName:    "Stone",
		Email:       &email,
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestCreateContact_Success_Returns201(t *testing.T) {
	var got usecase.ContactInput
	uc := &fakeContactUsecase{
		create: func(_ context.Context, input usecase.ContactInput) (*domain.Contact, error) {
			got = input
			return sampleContact(), nil
		},
	}

	w := doJSON(contactEngine(uc), http.MethodPost, "/api/contacts",
		`{"first_name":"Bob","last_name":"Stone","email":"bob@example.com","date_of_birth":"1990-04-12"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if got.UserID != testUser.ID {
		t.Errorf("input.UserID = %q, want the authenticated user", got.UserID)
	}
	if got.DateOfBirth.Format("2006-01-02") != "1990-04-12" {
		t.Errorf("input.DateOfBirth = %v", got.DateOfBirth)
	}
}

func TestCreateContact_FutureBirthDate_Returns400(t *testing.T) {
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	w := doJSON(contactEngine(&fakeContactUsecase{}), http.MethodPost, "/api/contacts",
		`{"first_name":"Bob","last_name":"Stone","date_of_birth":"`+future+`"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateContact_MalformedDate_Returns400(t *testing.T) {
	w := doJSON(contactEngine(&fakeContactUsecase{}), http.MethodPost, "/api/contacts",
		`{"first_name":"Bob","last_name":"Stone","date_of_birth":"12/04/1990"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListContacts_PassesFiltersAndPaging(t *testing.T) {
	var got repository.ListContactsInput
	uc := &fakeContactUsecase{
		list: func(_ context.Context, input repository.ListContactsInput) ([]*domain.Contact, error) {
			got = input
			return []*domain.Contact{sampleContact()}, nil
		},
	}

	w := doJSON(contactEngine(uc), http.MethodGet,
		"/api/contacts?first_name=Bo&offset=10&limit=5&birthdays_within=7", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.UserID != testUser.ID || got.FirstName != "Bo" || got.Offset != 10 || got.Limit != 5 || got.BirthdaysWithin != 7 {
		t.Errorf("unexpected list input: %+v", got)
	}
}

func TestListContacts_BadBirthdayWindow_Returns400(t *testing.T) {
	w := doJSON(contactEngine(&fakeContactUsecase{}), http.MethodGet,
		"/api/contacts?birthdays_within=soon", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListContacts_EmptyResult_ReturnsEmptyArray(t *testing.T) {
	uc := &fakeContactUsecase{
		list: func(context.Context, repository.ListContactsInput) ([]*domain.Contact, error) {
			return nil, nil
		},
	}

	w := doJSON(contactEngine(uc), http.MethodGet, "/api/contacts", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var out []json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("body is not a JSON array: %s", w.Body.String())
	}
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestGetContact_NotFound_Returns404(t *testing.T) {
	uc := &fakeContactUsecase{
		getByID: func(context.Context, string, string) (*domain.Contact, error) {
			return nil, domain.ErrContactNotFound
		},
	}

	w := doJSON(contactEngine(uc), http.MethodGet, "/api/contacts/missing", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateDateOfBirth_Success(t *testing.T) {
	var gotID string
	var gotDOB time.Time
	uc := &fakeContactUsecase{
		updateDateOfBirth: func(_ context.Context, id, userID string, dob time.Time) (*domain.Contact, error) {
			gotID, gotDOB = id, dob
			c := sampleContact()
			c.DateOfBirth = dob
			return c, nil
		},
	}

	w := doJSON(contactEngine(uc), http.MethodPatch, "/api/contacts/c1",
		`{"date_of_birth":"1985-12-01"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if gotID != "c1" || gotDOB.Format("2006-01-02") != "1985-12-01" {
		t.Errorf("UpdateDateOfBirth(%q, %v)", gotID, gotDOB)
	}
}

func TestDeleteContact_ReturnsRemovedContact(t *testing.T) {
	uc := &fakeContactUsecase{
		del: func(_ context.Context, id, userID string) (*domain.Contact, error) {
			if id != "c1" || userID != testUser.ID {
				t.Errorf("Delete(%q, %q)", id, userID)
			}
			return sampleContact(), nil
		},
	}

	w := doJSON(contactEngine(uc), http.MethodDelete, "/api/contacts/c1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["first_name"] != "Bob" {
		t.Errorf("first_name = %v, want Bob", body["first_name"])
	}
}

func TestContactRoutes_RequireAuth(t *testing.T) {
	r := contactEngine(&fakeContactUsecase{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a bearer token", w.Code)
	}
}
