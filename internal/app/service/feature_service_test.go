package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"hackr_api/internal/common"
	"hackr_api/internal/platform/recon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecon struct {
	email      json.RawMessage
	emailErr   error
	subdomains []string
	subErr     error
	results    []recon.SearchResult
	searchErr  error
	lastQuery  string
}

func (f *fakeRecon) VerifyEmail(_ context.Context, _ string) (json.RawMessage, error) {
	return f.email, f.emailErr
}

func (f *fakeRecon) Subdomains(_ context.Context, _ string) ([]string, error) {
	return f.subdomains, f.subErr
}

func (f *fakeRecon) Search(_ context.Context, query string) ([]recon.SearchResult, error) {
	f.lastQuery = query
	return f.results, f.searchErr
}

func TestGenerateSecuredPassword(t *testing.T) {
	svc := NewFeatureService(&fakeRecon{})
	a, err := svc.GenerateSecuredPassword()
	require.NoError(t, err)
	b, err := svc.GenerateSecuredPassword()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{24}$`), a)
	assert.NotEqual(t, a, b)
}

func TestIsCommonPassword(t *testing.T) {
	svc := NewFeatureService(&fakeRecon{})
	assert.True(t, svc.IsCommonPassword("123456"))
	assert.True(t, svc.IsCommonPassword("password"))
	assert.False(t, svc.IsCommonPassword("c0rrect-h0rse-battery-staple"))
	assert.False(t, svc.IsCommonPassword(""))
}

func TestGenerateIdentity(t *testing.T) {
	svc := NewFeatureService(&fakeRecon{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < 20; i++ {
		id := svc.GenerateIdentity()
		assert.NotEmpty(t, id.FirstName)
		assert.NotEmpty(t, id.LastName)
		assert.Regexp(t, `^[a-z0-9.]+@[^@\s]+$`, id.Email)
		assert.NotEmpty(t, id.PhoneNumber)
		assert.NotEmpty(t, id.Address.City)
		assert.NotEmpty(t, id.Avatar)

		birth, err := time.Parse("2006-01-02", id.Birthdate)
		require.NoError(t, err)
		assert.False(t, birth.After(now.AddDate(-18, 0, 0)), "too young: %s", id.Birthdate)
		assert.False(t, birth.Before(now.AddDate(-65, 0, -1)), "too old: %s", id.Birthdate)
	}
}

func TestRandomPictureURL(t *testing.T) {
	assert.Equal(t, "https://thispersondoesnotexist.com/image", NewFeatureService(&fakeRecon{}).RandomPictureURL())
}

func TestVerifyEmail(t *testing.T) {
	r := &fakeRecon{email: json.RawMessage(`{"status":"valid"}`)}
	svc := NewFeatureService(r)

	got, err := svc.VerifyEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"valid"}`, string(got))

	_, err = svc.VerifyEmail(context.Background(), " ")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Email is required", common.ClientMessage(err, ""))

	r.email, r.emailErr = nil, recon.ErrNoData
	_, err = svc.VerifyEmail(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, recon.ErrNoData)
}

func TestDomainInfo(t *testing.T) {
	r := &fakeRecon{subdomains: []string{"www", "mail"}}
	svc := NewFeatureService(r)

	got, err := svc.DomainInfo(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"www.example.com", "mail.example.com"}, got)

	r.subdomains = nil
	got, err = svc.DomainInfo(context.Background(), "example.com")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = svc.DomainInfo(context.Background(), "")
	assert.Equal(t, "Domain is required", common.ClientMessage(err, ""))

	r.subErr = errors.New("upstream down")
	_, err = svc.DomainInfo(context.Background(), "example.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrValidation)
}

func TestCrawlPerson(t *testing.T) {
	r := &fakeRecon{results: []recon.SearchResult{{Title: "Ada Lovelace", Link: "https://example.org/ada"}}}
	svc := NewFeatureService(r)

	got, err := svc.CrawlPerson(context.Background(), "Ada", "Lovelace", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Ada Lovelace", r.lastQuery)

	_, err = svc.CrawlPerson(context.Background(), "Ada", "Lovelace", " mathematician ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace mathematician", r.lastQuery)

	_, err = svc.CrawlPerson(context.Background(), "Ada", "", "")
	assert.Equal(t, "firstName and lastName are required.", common.ClientMessage(err, ""))
}
