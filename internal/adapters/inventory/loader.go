package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
)

// namespace seeds the deterministic IDs so re-importing a file updates records in place.
var namespace = uuid.MustParse("6f1f4e2a-9a43-4f0e-8d52-3c1b5a7d2e90")

// File is the on-disk inventory format. JSON files are read by the same decoder.
type File struct {
	Organization string       `yaml:"organization"`
	Domains      []DomainFile `yaml:"domains"`
}

type DomainFile struct {
	Name       string      `yaml:"name"`
	LastScanAt *time.Time  `yaml:"last_scan_at"`
	Assets     []AssetFile `yaml:"assets"`
}

type AssetFile struct {
	Name            string              `yaml:"name"`
	HTTPURL         string              `yaml:"http_url"`
	HTTPStatus      int                 `yaml:"http_status"`
	PageTitle       string              `yaml:"page_title"`
	ContentType     string              `yaml:"content_type"`
	Technologies    []string            `yaml:"technologies"`
	EndpointCount   int                 `yaml:"endpoint_count"`
	Vulnerabilities []VulnerabilityFile `yaml:"vulnerabilities"`
}

type VulnerabilityFile struct {
	Name      string       `yaml:"name"`
	Type      string       `yaml:"type"`
	Severity  SeverityFile `yaml:"severity"`
	CVSSScore *float64     `yaml:"cvss_score"`
}

// SeverityFile accepts either the numeric scale or a tier name.
type SeverityFile domain.Severity

func (s *SeverityFile) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.ToLower(strings.TrimSpace(value.Value))
	if n, err := strconv.Atoi(raw); err == nil {
		*s = SeverityFile(domain.Severity(n).Normalize())
		return nil
	}
	switch raw {
	case "info", "informational", "":
		*s = SeverityFile(domain.SeverityInfo)
	case "low":
		*s = SeverityFile(domain.SeverityLow)
	case "medium":
		*s = SeverityFile(domain.SeverityMedium)
	case "high":
		*s = SeverityFile(domain.SeverityHigh)
	case "critical":
		*s = SeverityFile(domain.SeverityCritical)
	default:
		return fmt.Errorf("line %d: unknown severity %q", value.Line, value.Value)
	}
	return nil
}

// Summary counts what an import wrote.
type Summary struct {
	Organization    string
	Domains         int
	Assets          int
	Vulnerabilities int
}

// Loader imports inventory files into the store in place of a discovery run.
type Loader struct {
	repo  ports.InventoryRepository
	audit ports.AuditService
}

// NewLoader creates a new inventory loader.
func NewLoader(repo ports.InventoryRepository) *Loader {
	return &Loader{repo: repo}
}

// SetAuditService records each import in the audit trail.
func (l *Loader) SetAuditService(audit ports.AuditService) {
	l.audit = audit
}

// LoadFromFile parses and stores an inventory file.
func (l *Loader) LoadFromFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer f.Close()

	inv, err := Parse(f)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := l.repo.SaveInventory(ctx, inv); err != nil {
		return Summary{}, fmt.Errorf("failed to save inventory: %w", err)
	}

	sum := Summary{
		Organization:    inv.Organization,
		Domains:         len(inv.Domains),
		Assets:          len(inv.Assets),
		Vulnerabilities: len(inv.Vulnerabilities()),
	}
	slog.Info("inventory imported", "organization", sum.Organization, "domains", sum.Domains,
		"assets", sum.Assets, "vulnerabilities", sum.Vulnerabilities)

	if l.audit != nil {
		details := fmt.Sprintf("%s: %d domains, %d assets, %d vulnerabilities", path, sum.Domains, sum.Assets, sum.Vulnerabilities)
		if err := l.audit.Log(ctx, domain.ActionInventoryImport, inv.Organization, details); err != nil {
			slog.Warn("failed to write audit log", "action", domain.ActionInventoryImport, "error", err)
		}
	}
	return sum, nil
}

// Parse decodes a YAML or JSON inventory and assigns stable IDs.
func Parse(r io.Reader) (*domain.Inventory, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty inventory file")
		}
		return nil, err
	}
	return file.toDomain()
}

func (f File) toDomain() (*domain.Inventory, error) {
	org, err := domain.NormalizeOrganization(f.Organization)
	if err != nil {
		return nil, err
	}

	inv := &domain.Inventory{Organization: org}
	for _, d := range f.Domains {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if name == "" {
			return nil, errors.New("domain without a name")
		}
		domainID := stableID(org, name)
		inv.Domains = append(inv.Domains, domain.Domain{
			ID:         domainID,
			Name:       name,
			Project:    org,
			LastScanAt: d.LastScanAt,
		})

		for _, a := range d.Assets {
			assetName := strings.ToLower(strings.TrimSpace(a.Name))
			if assetName == "" {
				return nil, fmt.Errorf("asset without a name under %s", name)
			}
			assetID := stableID(org, name, assetName)
			asset := domain.Asset{
				ID:            assetID,
				DomainID:      domainID,
				Name:          assetName,
				HTTPURL:       a.HTTPURL,
				HTTPStatus:    a.HTTPStatus,
				PageTitle:     a.PageTitle,
				ContentType:   a.ContentType,
				Technologies:  a.Technologies,
				EndpointCount: a.EndpointCount,
			}
			for _, v := range a.Vulnerabilities {
				asset.Vulnerabilities = append(asset.Vulnerabilities, domain.Vulnerability{
					ID:        stableID(org, name, assetName, v.Name, v.Type),
					AssetID:   assetID,
					Name:      v.Name,
					Type:      v.Type,
					Severity:  domain.Severity(v.Severity),
					CVSSScore: v.CVSSScore,
				})
			}
			inv.Assets = append(inv.Assets, asset)
		}
	}
	return inv, nil
}

func stableID(parts ...string) string {
	return uuid.NewSHA1(namespace, []byte(strings.ToLower(strings.Join(parts, "\x00")))).String()
}
