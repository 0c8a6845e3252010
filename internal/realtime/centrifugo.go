// Package realtime publishes chat events to the external real-time gateway.
package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/pkg/jwt"
)

// Publisher delivers a payload to subscribed clients.
type Publisher interface {
	Publish(ctx context.Context, data any) error
}

// CentrifugoConfig locates the gateway's HTTP API.
type CentrifugoConfig struct {
	Host       string
	APIKey     string
	HMACSecret string
	Namespace  string
}

// Centrifugo publishes through the gateway's HTTP API and issues connection tokens.
type Centrifugo struct {
	config     CentrifugoConfig
	httpClient *http.Client
	signer     *jwt.Signer
}

func NewCentrifugo(config CentrifugoConfig, httpClient *http.Client) *Centrifugo {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	config.Host = strings.TrimSuffix(config.Host, "/")
	return &Centrifugo{
		config:     config,
		httpClient: httpClient,
		signer:     jwt.NewSigner(config.HMACSecret, 0),
	}
}

type publishRequest struct {
	Method string        `json:"method"`
	Params publishParams `json:"params"`
}

type publishParams struct {
	Channel string `json:"channel"`
	Data    any    `json:"data"`
}

type apiResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Publish sends data to the chat channel.
func (c *Centrifugo) Publish(ctx context.Context, data any) error {
	if c.config.Host == "" || c.config.APIKey == "" || c.config.Namespace == "" {
		return apperr.Misconfigured("real-time gateway is not configured.")
	}

	body, err := json.Marshal(publishRequest{
		Method: "publish",
		Params: publishParams{Channel: c.config.Namespace, Data: data},
	})
	if err != nil {
		return fmt.Errorf("failed to encode publish request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Host+"/api", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "apikey "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Upstream("publish failed", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return apperr.Upstream("publish failed",
			fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	var parsed apiResponse
	if len(respBody) > 0 && json.Unmarshal(respBody, &parsed) == nil && parsed.Error != nil {
		return apperr.Upstream("publish failed",
			fmt.Errorf("gateway error %d: %s", parsed.Error.Code, parsed.Error.Message))
	}
	return nil
}

// ConnectionToken signs a token that lets a client subscribe to the chat channel.
func (c *Centrifugo) ConnectionToken(subject string) (string, error) {
	token, err := c.signer.GenerateChannelToken(subject, c.config.Namespace)
	if errors.Is(err, jwt.ErrMissingSecret) {
		return "", apperr.Misconfigured("real-time token secret is missing.")
	}
	return token, err
}

// MultiPublisher publishes to every publisher and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, data any) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Publisher = (*Centrifugo)(nil)
	_ Publisher = MultiPublisher(nil)
)
