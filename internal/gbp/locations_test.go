package gbp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
)

func TestFetchAccounts(t *testing.T) {
	t.Run("returns accounts with trimmed IDs", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/accounts", r.URL.Path)
			assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

			_, _ = w.Write([]byte(`{
				"accounts": [
					{"name": "accounts/111", "accountName": "Main Street Bakery"},
					{"name": "accounts/222", "accountName": "Downtown Cafe"}
				]
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		accounts, err := client.FetchAccounts(context.Background(), "access-token")
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, Account{ID: "111", Name: "Main Street Bakery"}, accounts[0])
		assert.Equal(t, Account{ID: "222", Name: "Downtown Cafe"}, accounts[1])
	})

	t.Run("empty account list is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		accounts, err := client.FetchAccounts(context.Background(), "access-token")
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.FetchAccounts(context.Background(), "access-token")
		require.Error(t, err)

		var structured *apperrors.Error
		require.ErrorAs(t, err, &structured)
		assert.Equal(t, apperrors.TypeUpstream, structured.Type)
		assert.Equal(t, http.StatusForbidden, structured.Status)
	})
}

func TestFetchLocations(t *testing.T) {
	t.Run("follows pagination and skips malformed names", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Equal(t, "/accounts/111/locations", r.URL.Path)

			switch r.URL.Query().Get("pageToken") {
			case "":
				_, _ = w.Write([]byte(`{
					"locations": [
						{
							"name": "accounts/111/locations/aaa",
							"locationName": "Main Street Bakery",
							"address": {
								"addressLines": ["12 Main St"],
								"locality": "Springfield",
								"administrativeArea": "IL",
								"postalCode": "62701"
							}
						},
						{"name": "garbage-resource-name", "locationName": "Skipped"}
					],
					"nextPageToken": "page-2"
				}`))
			case "page-2":
				_, _ = w.Write([]byte(`{
					"locations": [
						{"name": "accounts/111/locations/bbb", "locationName": "Downtown Cafe"}
					]
				}`))
			default:
				t.Fatalf("unexpected pageToken %q", r.URL.Query().Get("pageToken"))
			}
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		locations, err := client.FetchLocations(context.Background(), "access-token", "111")
		require.NoError(t, err)
		assert.Equal(t, 2, requests)

		require.Len(t, locations, 2)
		assert.Equal(t, Location{
			ID:      "aaa",
			Name:    "Main Street Bakery",
			Address: "12 Main St, Springfield, IL, 62701",
		}, locations[0])
		assert.Equal(t, Location{ID: "bbb", Name: "Downtown Cafe"}, locations[1])
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.FetchLocations(context.Background(), "access-token", "111")
		require.Error(t, err)

		var structured *apperrors.Error
		require.ErrorAs(t, err, &structured)
		assert.Equal(t, apperrors.TypeUpstream, structured.Type)
		assert.Equal(t, http.StatusServiceUnavailable, structured.Status)
	})
}

func TestParseLocationID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"well formed", "accounts/111/locations/aaa", "aaa", true},
		{"whitespace around id", "accounts/111/locations/ aaa ", "aaa", true},
		{"missing locations segment", "accounts/111", "", false},
		{"missing accounts prefix", "groups/111/locations/aaa", "", false},
		{"empty account", "accounts//locations/aaa", "", false},
		{"empty location id", "accounts/111/locations/", "", false},
		{"whitespace-only location id", "accounts/111/locations/   ", "", false},
		{"trailing segments", "accounts/111/locations/aaa/reviews/bbb", "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := parseLocationID(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestPostalAddressDisplay(t *testing.T) {
	t.Run("nil address", func(t *testing.T) {
		var a *postalAddress
		assert.Equal(t, "", a.display())
	})

	t.Run("full address", func(t *testing.T) {
		a := &postalAddress{
			AddressLines:       []string{"12 Main St", "Suite 4"},
			Locality:           "Springfield",
			AdministrativeArea: "IL",
			PostalCode:         "62701",
		}
		assert.Equal(t, "12 Main St, Suite 4, Springfield, IL, 62701", a.display())
	})

	t.Run("empty parts omitted", func(t *testing.T) {
		a := &postalAddress{
			AddressLines: []string{"", "12 Main St"},
			Locality:     "Springfield",
		}
		assert.Equal(t, "12 Main St, Springfield", a.display())
	})
}
