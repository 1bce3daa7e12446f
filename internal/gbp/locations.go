package gbp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
)

// Account is an account visible to the access token.
type Account struct {
	ID   string
	Name string
}

// Location is a business location under an account.
type Location struct {
	ID      string
	Name    string
	Address string
}

// FetchAccounts lists the accounts visible to the token. An empty result is
// not an error.
func (c *Client) FetchAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.apiBaseURL+"/accounts", nil, bearerHeader(accessToken))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperrors.UpstreamError(status, fmt.Sprintf("accounts list failed with status %d: %s", status, truncateBody(body)))
	}

	var result struct {
		Accounts []struct {
			Name        string `json:"name"`
			AccountName string `json:"accountName"`
		} `json:"accounts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.UpstreamError(http.StatusBadGateway, fmt.Sprintf("failed to decode accounts response: %v", err))
	}

	accounts := make([]Account, 0, len(result.Accounts))
	for _, a := range result.Accounts {
		accounts = append(accounts, Account{
			ID:   strings.TrimPrefix(a.Name, "accounts/"),
			Name: a.AccountName,
		})
	}
	return accounts, nil
}

// FetchLocations lists all locations under an account, following pagination.
// Locations whose resource name does not parse are skipped and counted, never
// fatal.
func (c *Client) FetchLocations(ctx context.Context, accessToken, accountID string) ([]Location, error) {
	var locations []Location
	skipped := 0
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("%s/accounts/%s/locations", c.apiBaseURL, url.PathEscape(accountID))
		if pageToken != "" {
			endpoint += "?pageToken=" + url.QueryEscape(pageToken)
		}

		status, body, err := c.do(ctx, http.MethodGet, endpoint, nil, bearerHeader(accessToken))
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, apperrors.UpstreamError(status, fmt.Sprintf("locations list failed with status %d: %s", status, truncateBody(body)))
		}

		var result struct {
			Locations []struct {
				Name         string         `json:"name"`
				LocationName string         `json:"locationName"`
				Address      *postalAddress `json:"address"`
			} `json:"locations"`
			NextPageToken string `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, apperrors.UpstreamError(http.StatusBadGateway, fmt.Sprintf("failed to decode locations response: %v", err))
		}

		for _, loc := range result.Locations {
			locationID, ok := parseLocationID(loc.Name)
			if !ok {
				skipped++
				continue
			}
			locations = append(locations, Location{
				ID:      locationID,
				Name:    loc.LocationName,
				Address: loc.Address.display(),
			})
		}

		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}

	if skipped > 0 {
		slog.Warn("Skipped locations with malformed resource names", "account_id", accountID, "skipped", skipped)
	}

	return locations, nil
}

// parseLocationID extracts the location id from a resource name of the form
// accounts/{a}/locations/{b}. It returns false for anything else, including
// an id that is empty after trimming.
func parseLocationID(name string) (string, bool) {
	parts := strings.SplitN(name, "/locations/", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.HasPrefix(parts[0], "accounts/") || strings.TrimPrefix(parts[0], "accounts/") == "" {
		return "", false
	}
	id := strings.TrimSpace(parts[1])
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// postalAddress mirrors the subset of the provider's address resource we
// render. display concatenates the available sub-fields, omitting empty ones.
type postalAddress struct {
	AddressLines       []string `json:"addressLines"`
	Locality           string   `json:"locality"`
	AdministrativeArea string   `json:"administrativeArea"`
	PostalCode         string   `json:"postalCode"`
}

func (a *postalAddress) display() string {
	if a == nil {
		return ""
	}
	var parts []string
	for _, line := range a.AddressLines {
		if line != "" {
			parts = append(parts, line)
		}
	}
	if a.Locality != "" {
		parts = append(parts, a.Locality)
	}
	if a.AdministrativeArea != "" {
		parts = append(parts, a.AdministrativeArea)
	}
	if a.PostalCode != "" {
		parts = append(parts, a.PostalCode)
	}
	return strings.Join(parts, ", ")
}
