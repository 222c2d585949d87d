package handler

// Handler tests cover status mapping, path parsing and response shapes.
// Issuance semantics are tested in the service package and e2e/features.

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"loot/internal/bag/handler/mocks"
	"loot/internal/bag/models"
	"loot/internal/caller"
	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
	"loot/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type BagHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	alice   caller.Principal
}

func TestBagHandlerSuite(t *testing.T) {
	suite.Run(t, new(BagHandlerSuite))
}

func (s *BagHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.alice = caller.Principal{Address: testutil.TestAddresses.Alice}

	h := New(s.service, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterClaims(r)
	h.RegisterAdmin(r)
	s.router = r
}

func (s *BagHandlerSuite) do(method, path string, p *caller.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if p != nil {
		req = req.WithContext(caller.WithPrincipal(req.Context(), *p))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *BagHandlerSuite) assertError(w *httptest.ResponseRecorder, status int, code string) {
	s.Equal(status, w.Code)
	var body map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(code, body["error"])
}

func (s *BagHandlerSuite) TestClaim() {
	s.Run("created with the issued record", func() {
		claimedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		rec := testutil.NewRecord(5).WithOwner(testutil.TestAddresses.Alice).WithCredential(42).Build()
		rec.ClaimedAt = claimedAt
		s.service.EXPECT().Claim(gomock.Any(), domain.TokenID(5), s.alice).Return(rec, nil)

		w := s.do(http.MethodPost, "/v1/bags/5/claim", &s.alice)

		s.Equal(http.StatusCreated, w.Code)
		s.JSONEq(`{
			"token_id": 5,
			"name": "Loot #5",
			"owner": "0x00000000000000000000000000000000000000a1",
			"credential": "42",
			"channel": "public",
			"claimed_at": "2026-03-01T00:00:00Z"
		}`, w.Body.String())
	})

	s.Run("missing caller is 401 without calling the service", func() {
		w := s.do(http.MethodPost, "/v1/bags/5/claim", nil)
		s.assertError(w, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("non-numeric id is an invalid identifier", func() {
		w := s.do(http.MethodPost, "/v1/bags/abc/claim", &s.alice)
		s.assertError(w, http.StatusBadRequest, "invalid_identifier")
	})

	s.Run("negative id is an invalid identifier", func() {
		w := s.do(http.MethodPost, "/v1/bags/-3/claim", &s.alice)
		s.assertError(w, http.StatusBadRequest, "invalid_identifier")
	})

	s.Run("service errors map to status codes", func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{dErrors.New(dErrors.CodeInvalidIdentifier, "out of range"), http.StatusBadRequest, "invalid_identifier"},
			{dErrors.New(dErrors.CodeAlreadyClaimed, "taken"), http.StatusConflict, "already_claimed"},
			{dErrors.New(dErrors.CodeUnauthorized, "intermediary"), http.StatusUnauthorized, "unauthorized"},
			{dErrors.New(dErrors.CodeUnavailable, "paused"), http.StatusServiceUnavailable, "unavailable"},
			{dErrors.New(dErrors.CodeTimeout, "slow"), http.StatusGatewayTimeout, "timeout"},
			{dErrors.New(dErrors.CodeInternal, "boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			s.service.EXPECT().Claim(gomock.Any(), domain.TokenID(7), s.alice).Return(nil, tc.err)
			w := s.do(http.MethodPost, "/v1/bags/7/claim", &s.alice)
			s.assertError(w, tc.status, tc.code)
		}
	})
}

func (s *BagHandlerSuite) TestAdminRoutes() {
	admin := caller.Principal{Address: testutil.TestAddresses.Admin}

	s.Run("owner claim", func() {
		rec := testutil.NewRecord(7778).
			WithOwner(testutil.TestAddresses.Recipient).
			WithChannel(models.ChannelReserved).
			Build()
		s.service.EXPECT().OwnerClaim(gomock.Any(), domain.TokenID(7778), admin).Return(rec, nil)

		w := s.do(http.MethodPost, "/v1/admin/bags/7778/claim", &admin)
		s.Equal(http.StatusCreated, w.Code)
		s.Contains(w.Body.String(), `"channel":"reserved"`)
	})

	s.Run("pause and resume return the state", func() {
		s.service.EXPECT().Pause(gomock.Any(), admin).Return(models.State{Paused: true, UpdatedBy: admin.Address}, nil)
		s.service.EXPECT().Resume(gomock.Any(), admin).Return(models.State{Paused: false, UpdatedBy: admin.Address}, nil)

		w := s.do(http.MethodPost, "/v1/admin/pause", &admin)
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"paused":true`)

		w = s.do(http.MethodPost, "/v1/admin/resume", &admin)
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"paused":false`)
	})

	s.Run("pause by non-admin is 401", func() {
		s.service.EXPECT().Pause(gomock.Any(), s.alice).Return(models.State{}, dErrors.New(dErrors.CodeUnauthorized, "admin only"))
		w := s.do(http.MethodPost, "/v1/admin/pause", &s.alice)
		s.assertError(w, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *BagHandlerSuite) TestQueries() {
	s.Run("properties", func() {
		s.service.EXPECT().Properties(gomock.Any(), domain.TokenID(42)).Return(models.Properties{
			Name:       "Loot #42",
			Owner:      testutil.TestAddresses.Alice,
			TokenID:    42,
			Credential: domain.CredentialFromUint64(9),
		}, nil)

		w := s.do(http.MethodGet, "/v1/bags/42", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"name":"Loot #42","owner":"0x00000000000000000000000000000000000000a1","tokenID":42,"credential":"9"}`, w.Body.String())
	})

	s.Run("not found", func() {
		s.service.EXPECT().Credential(gomock.Any(), domain.TokenID(9)).Return(domain.Credential{}, dErrors.New(dErrors.CodeNotFound, "bag 9 not found"))
		w := s.do(http.MethodGet, "/v1/bags/9/credential", nil)
		s.assertError(w, http.StatusNotFound, "not_found")
	})

	s.Run("credential", func() {
		s.service.EXPECT().Credential(gomock.Any(), domain.TokenID(3)).Return(domain.CredentialFromUint64(77), nil)
		w := s.do(http.MethodGet, "/v1/bags/3/credential", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"token_id":3,"credential":"77"}`, w.Body.String())
	})

	s.Run("one trait with lower-case category", func() {
		s.service.EXPECT().Trait(gomock.Any(), domain.TokenID(3), models.CategoryWeapon).Return("Maul", nil)
		w := s.do(http.MethodGet, "/v1/bags/3/traits/weapon", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"category":"WEAPON","value":"Maul"}`, w.Body.String())
	})

	s.Run("unknown category", func() {
		w := s.do(http.MethodGet, "/v1/bags/3/traits/cape", nil)
		s.assertError(w, http.StatusBadRequest, "bad_request")
	})

	s.Run("all traits", func() {
		traits := models.Traits{{Category: models.CategoryWeapon, Value: "Maul"}}
		s.service.EXPECT().Traits(gomock.Any(), domain.TokenID(3)).Return(traits, nil)
		w := s.do(http.MethodGet, "/v1/bags/3/traits", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"token_id":3,"traits":[{"category":"WEAPON","value":"Maul"}]}`, w.Body.String())
	})

	s.Run("token URI", func() {
		s.service.EXPECT().TokenURI(gomock.Any(), domain.TokenID(3)).Return("data:application/json;base64,e30=", nil)
		w := s.do(http.MethodGet, "/v1/bags/3/token-uri", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"token_id":3,"token_uri":"data:application/json;base64,e30="}`, w.Body.String())
	})

	s.Run("traits by credential", func() {
		cred := domain.CredentialFromUint64(42)
		s.service.EXPECT().TraitsForCredential(gomock.Any(), cred).Return(models.Traits{{Category: models.CategoryRing, Value: "Titanium Ring"}}, nil)
		w := s.do(http.MethodGet, "/v1/credentials/42/traits", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"credential":"42","traits":[{"category":"RING","value":"Titanium Ring"}]}`, w.Body.String())
	})

	s.Run("one trait by credential", func() {
		s.service.EXPECT().TraitForCredential(gomock.Any(), domain.CredentialFromUint64(1), models.CategoryFoot).Return("Greaves", nil)
		w := s.do(http.MethodGet, "/v1/credentials/1/traits/FOOT", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"category":"FOOT","value":"Greaves"}`, w.Body.String())
	})

	s.Run("oversized credential", func() {
		long := "1"
		for range 80 {
			long += "0"
		}
		w := s.do(http.MethodGet, "/v1/credentials/"+long+"/traits", nil)
		s.assertError(w, http.StatusBadRequest, "bad_request")
	})

	s.Run("meta and state", func() {
		s.service.EXPECT().Meta().Return(models.CollectionMeta())
		s.service.EXPECT().State(gomock.Any()).Return(models.State{}, nil)

		w := s.do(http.MethodGet, "/v1/meta", nil)
		s.Equal(http.StatusOK, w.Code)
		var meta models.Meta
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &meta))
		s.Equal(models.Symbol, meta.Symbol)
		s.Equal([2]uint64{1, 7777}, meta.PublicRange)
		s.Equal([2]uint64{7778, 8000}, meta.ReservedRange)

		w = s.do(http.MethodGet, "/v1/state", nil)
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"paused":false}`, w.Body.String())
	})
}

func (s *BagHandlerSuite) TestCredentialDerivationFailuresAreLogged() {
	var logs bytes.Buffer
	h := New(s.service, slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	r := chi.NewRouter()
	h.Register(r)

	s.service.EXPECT().TraitsForCredential(gomock.Any(), domain.CredentialFromUint64(42)).
		Return(nil, dErrors.New(dErrors.CodeInternal, "tables unavailable"))
	s.service.EXPECT().TraitForCredential(gomock.Any(), domain.CredentialFromUint64(1), models.CategoryFoot).
		Return("", dErrors.New(dErrors.CodeInternal, "tables unavailable"))

	for _, path := range []string{"/v1/credentials/42/traits", "/v1/credentials/1/traits/FOOT"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		s.Equal(http.StatusInternalServerError, w.Code, path)
	}

	out := logs.String()
	s.Contains(out, `"msg":"credential traits derivation failed"`)
	s.Contains(out, `"msg":"credential trait derivation failed"`)
	s.Equal(2, strings.Count(out, `"level":"ERROR"`))
}
