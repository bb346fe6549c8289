// Copyright 2025 Meridian Protocol
//
// Sequencer HTTP Client
// Typed client for the BridgeTx, BridgeTxSpeedUp and result-patch endpoints

// Package sequencer is the typed HTTP client both the voter and relayer use
// to talk to the sequencer: posting signed transfers and speedup requests,
// and (relayer-side) PATCHing finality results back.
package sequencer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

// ResponseClass buckets a sequencer HTTP response the same way both
// pipelines already classify it: 2xx means accepted, 4xx means permanently
// rejected (logged and dropped), anything else is treated as transient and
// retried.
type ResponseClass int

const (
	ClassSuccess ResponseClass = iota
	ClassClientError
	ClassOther
)

// Outcome is the result of one sequencer call.
type Outcome struct {
	StatusCode int
	Class      ResponseClass
	Body       string
}

func classify(code int) ResponseClass {
	switch {
	case code >= 200 && code < 300:
		return ClassSuccess
	case code >= 400 && code < 500:
		return ClassClientError
	default:
		return ClassOther
	}
}

// Client is a thin wrapper over *http.Client scoped to one sequencer base
// URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client posting to baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, url string, body any) (Outcome, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Outcome{}, fmt.Errorf("sequencer: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(raw))
	if err != nil {
		return Outcome{}, fmt.Errorf("sequencer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("sequencer: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("sequencer: read response: %w", err)
	}

	return Outcome{
		StatusCode: resp.StatusCode,
		Class:      classify(resp.StatusCode),
		Body:       string(respBody),
	}, nil
}

// PostBridgeTx submits a fully signed CanonicalTx to POST {base}/api/v1/BridgeTx.
func (c *Client) PostBridgeTx(ctx context.Context, tx txmodel.CanonicalTx) (Outcome, error) {
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/v1/BridgeTx", tx)
}

// PostSpeedUp submits a speedup request to POST {base}/api/v1/BridgeTxSpeedUp.
func (c *Client) PostSpeedUp(ctx context.Context, req txmodel.SpeedupRequest) (Outcome, error) {
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/v1/BridgeTxSpeedUp", req)
}

// PatchRequest is the body the relayer PATCHes back to the sequencer once a
// destination-chain execution reaches a terminal state.
type PatchRequest struct {
	FromChainTxHash string                  `json:"from_chain_tx_hash"`
	Status          chain.TransactionStatus `json:"status"`
}

// PatchResult reports tx's final status to PATCH {base}.
func (c *Client) PatchResult(ctx context.Context, fromChainTxHash string, status chain.TransactionStatus) (Outcome, error) {
	req := PatchRequest{FromChainTxHash: fromChainTxHash, Status: status}
	return c.doJSON(ctx, http.MethodPatch, c.baseURL, req)
}
