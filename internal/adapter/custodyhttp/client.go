package custodyhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"backed-protocol/internal/domain/custody"
)

var _ custody.Adapter = (*Client)(nil)

// Client bridges ledger custody instructions to the external settlement
// service. Every call is synchronous: the ledger transaction only commits
// once the service has accepted the movement, and a rejection aborts it.
type Client struct {
	base string
	hc   *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type collateralReq struct {
	Asset  string `json:"asset"`
	ItemID uint64 `json:"item_id"`
	Party  string `json:"party"`
}

type fundsReq struct {
	Asset  string `json:"asset"`
	Party  string `json:"party"`
	Amount string `json:"amount"`
}

func (c *Client) CollateralIn(ctx context.Context, asset string, itemID uint64, from string) error {
	return c.post(ctx, "/collateral/in", collateralReq{Asset: asset, ItemID: itemID, Party: from})
}

func (c *Client) CollateralOut(ctx context.Context, asset string, itemID uint64, to string) error {
	return c.post(ctx, "/collateral/out", collateralReq{Asset: asset, ItemID: itemID, Party: to})
}

func (c *Client) FundsIn(ctx context.Context, asset string, from string, amount *big.Int) error {
	return c.post(ctx, "/funds/in", fundsReq{Asset: asset, Party: from, Amount: amount.String()})
}

func (c *Client) FundsOut(ctx context.Context, asset string, to string, amount *big.Int) error {
	return c.post(ctx, "/funds/out", fundsReq{Asset: asset, Party: to, Amount: amount.String()})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", custody.ErrTransferRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s", custody.ErrTransferRejected, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
