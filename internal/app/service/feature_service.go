package service

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hackr_api/internal/common"
	"hackr_api/internal/platform/recon"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gosimple/slug"
)

const (
	securedPasswordBytes = 12
	randomPictureURL     = "https://thispersondoesnotexist.com/image"
	avatarBaseURL        = "https://i.pravatar.cc/300?u="
)

//go:embed data/common-passwords.txt
var commonPasswordsFile []byte

// Recon is the set of third-party lookups the public features rely on.
type Recon interface {
	VerifyEmail(ctx context.Context, email string) (json.RawMessage, error)
	Subdomains(ctx context.Context, domain string) ([]string, error)
	Search(ctx context.Context, query string) ([]recon.SearchResult, error)
}

type FeatureService struct {
	recon           Recon
	commonPasswords map[string]struct{}
	now             func() time.Time
}

func NewFeatureService(r Recon) *FeatureService {
	return &FeatureService{
		recon:           r,
		commonPasswords: loadCommonPasswords(commonPasswordsFile),
		now:             time.Now,
	}
}

func loadCommonPasswords(data []byte) map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}

// GenerateSecuredPassword returns 12 random bytes hex-encoded.
func (s *FeatureService) GenerateSecuredPassword() (string, error) {
	buf := make([]byte, securedPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IsCommonPassword reports an exact match against the embedded list.
func (s *FeatureService) IsCommonPassword(password string) bool {
	_, ok := s.commonPasswords[password]
	return ok
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type FictiveIdentity struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Address     Address `json:"address"`
	Birthdate   string  `json:"birthdate"`
	Avatar      string  `json:"avatar"`
}

func (s *FeatureService) GenerateIdentity() FictiveIdentity {
	f := gofakeit.New(0)
	now := s.now()

	firstName := f.FirstName()
	lastName := f.LastName()
	local := strings.ReplaceAll(slug.Make(firstName+" "+lastName), "-", ".")
	birth := f.DateRange(now.AddDate(-65, 0, 0), now.AddDate(-18, 0, 0))

	return FictiveIdentity{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       local + "@" + f.DomainName(),
		PhoneNumber: f.Phone(),
		Address: Address{
			Street:  f.Street(),
			City:    f.City(),
			Country: f.Country(),
		},
		Birthdate: birth.Format("2006-01-02"),
		Avatar:    avatarBaseURL + f.UUID(),
	}
}

func (s *FeatureService) RandomPictureURL() string {
	return randomPictureURL
}

// VerifyEmail returns Hunter's verification payload. recon.ErrNoData is
// passed through so callers can tell "no verdict" from an upstream failure.
func (s *FeatureService) VerifyEmail(ctx context.Context, email string) (json.RawMessage, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, common.NewClientError(common.ErrValidation, "Email is required")
	}
	return s.recon.VerifyEmail(ctx, email)
}

// DomainInfo lists fully qualified subdomains of domain.
func (s *FeatureService) DomainInfo(ctx context.Context, domain string) ([]string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, common.NewClientError(common.ErrValidation, "Domain is required")
	}
	labels, err := s.recon.Subdomains(ctx, domain)
	if err != nil {
		return nil, err
	}
	full := make([]string, 0, len(labels))
	for _, label := range labels {
		full = append(full, label+"."+domain)
	}
	return full, nil
}

// CrawlPerson searches the web for "<firstName> <lastName> <moreDetail>".
func (s *FeatureService) CrawlPerson(ctx context.Context, firstName, lastName, moreDetail string) ([]recon.SearchResult, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, common.NewClientError(common.ErrValidation, "firstName and lastName are required.")
	}
	query := strings.TrimSpace(firstName + " " + lastName + " " + strings.TrimSpace(moreDetail))
	return s.recon.Search(ctx, query)
}
