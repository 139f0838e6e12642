package inventory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/reconrisk/internal/adapters/storage"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

const acmeYAML = `
organization: Acme Corp
domains:
  - name: Acme.com
    last_scan_at: 2026-02-20T10:00:00Z
    assets:
      - name: shop.acme.com
        http_url: https://shop.acme.com/checkout
        http_status: 200
        page_title: Checkout - enter card details
        technologies: [WordPress, PHP]
        endpoint_count: 42
        vulnerabilities:
          - name: SQL injection
            type: sqli
            severity: critical
            cvss_score: 9.8
          - name: Server banner
            severity: 1
      - name: admin.acme.com
        http_url: http://admin.acme.com/
`

const acmeJSON = `{
  "organization": "Acme Corp",
  "domains": [{
    "name": "acme.com",
    "last_scan_at": "2026-02-20T10:00:00Z",
    "assets": [{"name": "SHOP.acme.com", "vulnerabilities": [{"name": "SQL injection", "type": "sqli", "severity": "High"}]}]
  }]
}`

func TestParse_YAML(t *testing.T) {
	inv, err := Parse(strings.NewReader(acmeYAML))
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", inv.Organization)
	require.Len(t, inv.Domains, 1)
	assert.Equal(t, "acme.com", inv.Domains[0].Name)
	assert.Equal(t, "Acme Corp", inv.Domains[0].Project)
	require.NotNil(t, inv.Domains[0].LastScanAt)
	assert.Equal(t, 2026, inv.Domains[0].LastScanAt.Year())

	require.Len(t, inv.Assets, 2)
	shop := inv.Assets[0]
	assert.Equal(t, inv.Domains[0].ID, shop.DomainID)
	assert.Equal(t, []string{"WordPress", "PHP"}, shop.Technologies)
	assert.Equal(t, 42, shop.EndpointCount)

	require.Len(t, shop.Vulnerabilities, 2)
	assert.Equal(t, domain.SeverityCritical, shop.Vulnerabilities[0].Severity)
	assert.Equal(t, domain.SeverityLow, shop.Vulnerabilities[1].Severity)
	assert.Equal(t, shop.ID, shop.Vulnerabilities[0].AssetID)
	require.NotNil(t, shop.Vulnerabilities[0].CVSSScore)
	assert.InDelta(t, 9.8, *shop.Vulnerabilities[0].CVSSScore, 1e-9)
}

func TestParse_JSONSharesIDs(t *testing.T) {
	fromYAML, err := Parse(strings.NewReader(acmeYAML))
	require.NoError(t, err)
	fromJSON, err := Parse(strings.NewReader(acmeJSON))
	require.NoError(t, err)

	// Same organization, domain, asset and finding resolve to the same records.
	assert.Equal(t, fromYAML.Domains[0].ID, fromJSON.Domains[0].ID)
	assert.Equal(t, fromYAML.Assets[0].ID, fromJSON.Assets[0].ID)
	assert.Equal(t, fromYAML.Assets[0].Vulnerabilities[0].ID, fromJSON.Assets[0].Vulnerabilities[0].ID)
	assert.Equal(t, domain.SeverityHigh, fromJSON.Assets[0].Vulnerabilities[0].Severity)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty file":       "",
		"no organization":  "domains: []\n",
		"unknown key":      "organization: acme\nprojects: []\n",
		"unnamed domain":   "organization: acme\ndomains: [{name: ''}]\n",
		"unnamed asset":    "organization: acme\ndomains: [{name: a.com, assets: [{http_url: x}]}]\n",
		"unknown severity": "organization: acme\ndomains: [{name: a.com, assets: [{name: w, vulnerabilities: [{name: v, severity: severe}]}]}]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(acmeYAML), 0o600))

	store := storage.NewMemoryStorage()
	loader := NewLoader(store)
	ctx := context.Background()

	sum, err := loader.LoadFromFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Organization: "Acme Corp", Domains: 1, Assets: 2, Vulnerabilities: 2}, sum)

	// Importing twice updates in place.
	_, err = loader.LoadFromFile(ctx, path)
	require.NoError(t, err)

	inv, err := store.GetInventory(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, inv.Assets, 2)
	assert.Len(t, inv.Vulnerabilities(), 2)

	_, err = loader.LoadFromFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
