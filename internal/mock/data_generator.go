package mock

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// Subdomain prefixes for realistic mock data
var hostPrefixes = []string{
	"www", "api", "shop", "blog", "mail", "vpn", "dev", "staging",
	"cdn", "status", "support", "portal", "auth", "static", "docs", "app",
}

// Pages that drive specific compliance checks
var specialPaths = []struct {
	path  string
	title string
}{
	{"/admin/login", "Administration"},
	{"/privacy-policy", "Privacy Policy"},
	{"/cookie-settings", "Cookie Preferences"},
	{"/checkout/payment", "Checkout - Payment"},
}

// Technology stacks
var technologies = []string{
	"nginx", "Apache", "WordPress", "PHP", "MySQL", "React", "Node.js",
	"Drupal", "Joomla", "PostgreSQL", "Cloudflare", "jQuery", "Django",
}

// Vulnerability templates
var vulnTemplates = []struct {
	name     string
	kind     string
	severity domain.Severity
}{
	{"SQL Injection", "sqli", domain.SeverityCritical},
	{"Remote Code Execution", "rce", domain.SeverityCritical},
	{"Stored XSS", "xss", domain.SeverityHigh},
	{"Outdated TLS Configuration", "tls", domain.SeverityMedium},
	{"Directory Listing", "exposure", domain.SeverityMedium},
	{"Missing Security Headers", "headers", domain.SeverityLow},
	{"Server Version Disclosure", "banner", domain.SeverityLow},
	{"Robots.txt Entries", "info", domain.SeverityInfo},
}

// DataGenerator generates mock reconnaissance inventories
type DataGenerator struct {
	rand *rand.Rand
	now  time.Time
}

// NewDataGenerator creates a new mock data generator
func NewDataGenerator() *DataGenerator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator creates a generator whose output is reproducible for a seed.
func NewSeededGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rand: rand.New(rand.NewSource(seed)),
		now:  time.Now().UTC(),
	}
}

// GenerateScenario creates a complete mock inventory for an organization.
//
//	basic      few assets, recent scans
//	crowded    many domains and assets
//	vulnerable stale scans, plain HTTP, admin panels and severe findings
func (g *DataGenerator) GenerateScenario(organization, scenario string) *domain.Inventory {
	var numDomains, assetsPerDomain int
	var vulnRate float32

	switch scenario {
	case "crowded":
		numDomains, assetsPerDomain, vulnRate = 6, 8, 0.4
	case "vulnerable":
		numDomains, assetsPerDomain, vulnRate = 3, 4, 0.9
	default:
		numDomains, assetsPerDomain, vulnRate = 2, 3, 0.3
	}

	inv := &domain.Inventory{Organization: organization}
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(organization), " ", ""))
	if base == "" {
		base = "example"
	}

	for i := 0; i < numDomains; i++ {
		d := g.GenerateDomain(organization, fmt.Sprintf("%s%d.com", base, i+1), scenario == "vulnerable")
		inv.Domains = append(inv.Domains, d)

		for j := 0; j < assetsPerDomain; j++ {
			a := g.GenerateAsset(d, hostPrefixes[(i*assetsPerDomain+j)%len(hostPrefixes)], scenario == "vulnerable")
			if g.rand.Float32() < vulnRate {
				g.addVulnerabilities(&a, 1+g.rand.Intn(3))
			}
			inv.Assets = append(inv.Assets, a)
		}
	}
	return inv
}

// GenerateDomain creates a mock root domain. Stale domains were last scanned months ago.
func (g *DataGenerator) GenerateDomain(organization, name string, stale bool) domain.Domain {
	age := time.Duration(g.rand.Intn(30)) * 24 * time.Hour
	if stale {
		age += 120 * 24 * time.Hour
	}
	scanned := g.now.Add(-age)

	return domain.Domain{
		ID:         uuid.New().String(),
		Name:       name,
		Project:    organization,
		LastScanAt: &scanned,
	}
}

// GenerateAsset creates a mock subdomain under d
func (g *DataGenerator) GenerateAsset(d domain.Domain, prefix string, insecure bool) domain.Asset {
	host := prefix + "." + d.Name

	scheme := "https"
	if insecure && g.rand.Float32() < 0.5 {
		scheme = "http"
	}
	url := scheme + "://" + host + "/"
	title := strings.ToUpper(prefix[:1]) + prefix[1:] + " | " + d.Name

	// Roughly one asset in four exposes a page a compliance rule looks for.
	if g.rand.Float32() < 0.25 || (insecure && prefix == "portal") {
		p := specialPaths[g.rand.Intn(len(specialPaths))]
		url = scheme + "://" + host + p.path
		title = p.title
	}

	return domain.Asset{
		ID:            uuid.New().String(),
		DomainID:      d.ID,
		Name:          host,
		HTTPURL:       url,
		HTTPStatus:    200,
		PageTitle:     title,
		ContentType:   "text/html; charset=utf-8",
		Technologies:  g.pickTechnologies(1 + g.rand.Intn(3)),
		EndpointCount: g.rand.Intn(120),
	}
}

func (g *DataGenerator) addVulnerabilities(a *domain.Asset, n int) {
	for i := 0; i < n; i++ {
		t := vulnTemplates[g.rand.Intn(len(vulnTemplates))]
		a.Vulnerabilities = append(a.Vulnerabilities, domain.Vulnerability{
			ID:       uuid.New().String(),
			AssetID:  a.ID,
			Name:     t.name,
			Type:     t.kind,
			Severity: t.severity,
		})
	}
}

func (g *DataGenerator) pickTechnologies(n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		t := technologies[g.rand.Intn(len(technologies))]
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
