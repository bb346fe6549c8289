// Copyright 2025 Meridian Protocol
//
// Native-Chain JSON-RPC Client

package native

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// JSONRPCClient is the concrete RPC backing the native-chain adapters in
// production. The bridge program's custom query/submit methods are hit on
// the node's RPC endpoint directly; no generic chain SDK exposes them.
type JSONRPCClient struct {
	endpoint string
	http     *http.Client
}

// NewJSONRPCClient builds a client posting JSON-RPC requests to endpoint.
func NewJSONRPCClient(endpoint string) *JSONRPCClient {
	return &JSONRPCClient{endpoint: endpoint, http: &http.Client{}}
}

type rpcRequest struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params, result interface{}) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("native rpc: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("native rpc: build request %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("native rpc: do %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("native rpc: %s returned status %d", method, resp.StatusCode)
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("native rpc: decode %s: %w", method, err)
	}
	return nil
}

func (c *JSONRPCClient) LatestHeight(ctx context.Context) (uint64, error) {
	var out struct {
		Height uint64 `json:"height"`
	}
	if err := c.call(ctx, "latest_height", nil, &out); err != nil {
		return 0, err
	}
	return out.Height, nil
}

func (c *JSONRPCClient) GetTransitions(ctx context.Context, start, end uint64) ([]Transition, error) {
	var out struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.call(ctx, "get_transitions", map[string]uint64{"start": start, "end": end}, &out); err != nil {
		return nil, err
	}
	return out.Transitions, nil
}

func (c *JSONRPCClient) Keepers(ctx context.Context) ([]string, error) {
	var out struct {
		Keepers []string `json:"keepers"`
	}
	if err := c.call(ctx, "keepers", nil, &out); err != nil {
		return nil, err
	}
	return out.Keepers, nil
}

func (c *JSONRPCClient) SpendableRecords(ctx context.Context, start, end uint64) (spent []string, received []FeeRecord, err error) {
	var out struct {
		Spent    []string    `json:"spent"`
		Received []FeeRecord `json:"received"`
	}
	if err := c.call(ctx, "spendable_records", map[string]uint64{"start": start, "end": end}, &out); err != nil {
		return nil, nil, err
	}
	return out.Spent, out.Received, nil
}

func (c *JSONRPCClient) SubmitReceivePayload(ctx context.Context, signatures, keepers []string, payload string, feeRecord string) (string, error) {
	var out struct {
		TxID string `json:"tx_id"`
	}
	params := map[string]interface{}{
		"payload":       payload,
		"signatures":    signatures,
		"keepers":       keepers,
		"fee_record_id": feeRecord,
	}
	if err := c.call(ctx, "submit_receive_payload", params, &out); err != nil {
		return "", err
	}
	return out.TxID, nil
}

func (c *JSONRPCClient) TransactionStatus(ctx context.Context, txID string) (Status, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.call(ctx, "transaction_status", map[string]string{"tx_id": txID}, &out); err != nil {
		return StatusPending, err
	}
	switch out.Status {
	case "accepted":
		return StatusAccepted, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return StatusPending, nil
	}
}
