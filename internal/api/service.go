// Package api serves portal resources as json. Each request decodes its
// token, opens its own portal session and runs one extractor.
package api

import (
	"context"
	"strings"

	"mygcc-backend/internal/assert"
	"mygcc-backend/internal/chrono"
	"mygcc-backend/internal/extract"
	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/portal"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/internal/token"
)

const (
	report_service_login = "service.login"
)

type Options struct {
	// CacheSession issues tokens that carry the portal session.
	CacheSession bool
}

type Service struct {
	codec  token.Codec
	client *portal.Client
	time   chrono.TimeAPI
	tel    telemetry.API
	opts   Options
}

func NewService(codec token.Codec, client *portal.Client, time chrono.TimeAPI, tel telemetry.API, opts Options) Service {
	assert.NotNil("client", client)
	assert.NotNil("time", time)
	assert.NotNil("tel", tel)
	return Service{
		codec:  codec,
		client: client,
		time:   time,
		tel:    telemetry.NewScopedAPI("api", tel),
		opts:   opts,
	}
}

// Login performs the portal handshake with the given credentials and
// returns a token for them.
func (s Service) Login(ctx context.Context, cred token.Credential) (string, error) {
	if strings.TrimSpace(cred.Username) == "" || cred.Password == "" {
		return "", failure.New(failure.KindInvalidCredentials, "username and password are required")
	}
	// reject credentials that cannot be encoded before touching the portal
	plain, err := s.codec.Encode(cred)
	if err != nil {
		return "", err
	}

	session := s.client.NewSession(cred)
	err = session.Create(ctx)
	if err != nil {
		if failure.KindOf(err) == failure.KindInvalidCredentials {
			s.tel.ReportWarning(report_service_login, err, cred.Username)
		}
		return "", err
	}
	if !s.opts.CacheSession {
		return plain, nil
	}
	return s.codec.EncodeSession(cred, session.Cached())
}

// Verify reports whether a token decodes, it does not contact the portal.
func (s Service) Verify(tok string) error {
	_, err := s.codec.Decode(tok)
	return err
}

// Session opens the portal session a token describes, resuming the cached
// one when the token carries it.
func (s Service) Session(tok string) (*portal.Session, error) {
	payload, err := s.codec.Decode(tok)
	if err != nil {
		return nil, err
	}
	if payload.Cached != nil {
		return s.client.ResumeSession(payload.Credential, *payload.Cached), nil
	}
	return s.client.NewSession(payload.Credential), nil
}

func (s Service) Extractor(tok string) (extract.Extractor, error) {
	session, err := s.Session(tok)
	if err != nil {
		return extract.Extractor{}, err
	}
	return extract.New(session, s.tel), nil
}
