package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"TipSentinel/internal/model"
)

// Client talks to a condenser-style JSON-RPC API node for reads, and to
// a wallet signer RPC for the one write it needs (posting replies).
// Transaction signing stays in the signer; the bot never holds keys in
// process beyond passing them through from the environment.
type Client struct {
	APINode   string
	SignerURL string
	Account   string
	Key       string
	HTTP      *http.Client
}

// NewClient creates a chain client for the given API node and signer.
func NewClient(apiNode, signerURL, account, postingKey string) *Client {
	return &Client{
		APINode:   apiNode,
		SignerURL: signerURL,
		Account:   account,
		Key:       postingKey,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Name() string { return "condenser" }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(url, method string, params any, result any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	resp, err := c.HTTP.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("call %s: status %d, body: %s", method, resp.StatusCode, string(body))
	}
	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("call %s: rpc error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// HeadBlock returns the chain's current head block number.
func (c *Client) HeadBlock() (int64, error) {
	var props struct {
		HeadBlockNumber int64 `json:"head_block_number"`
	}
	if err := c.call(c.APINode, "condenser_api.get_dynamic_global_properties", []any{}, &props); err != nil {
		return 0, err
	}
	return props.HeadBlockNumber, nil
}

// blockOp is the expected JSON shape of one operation in a block.
type blockOp struct {
	Op []json.RawMessage `json:"op"`
}

type commentOp struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Body           string `json:"body"`
}

// BlockComments returns the comment operations in a block, in the order
// the chain recorded them.
func (c *Client) BlockComments(blockNum int64) ([]model.CommentEvent, error) {
	var ops []blockOp
	if err := c.call(c.APINode, "condenser_api.get_ops_in_block", []any{blockNum, false}, &ops); err != nil {
		return nil, err
	}
	var events []model.CommentEvent
	for _, op := range ops {
		if len(op.Op) != 2 {
			continue
		}
		var name string
		if err := json.Unmarshal(op.Op[0], &name); err != nil || name != "comment" {
			continue
		}
		var body commentOp
		if err := json.Unmarshal(op.Op[1], &body); err != nil {
			continue
		}
		events = append(events, model.CommentEvent{
			BlockNum:     blockNum,
			Author:       body.Author,
			ParentAuthor: body.ParentAuthor,
			Permlink:     body.Permlink,
			Body:         body.Body,
		})
	}
	return events, nil
}

// Replies returns all direct replies to a post. Returns ErrNotFound if
// the post no longer exists.
func (c *Client) Replies(author, permlink string) ([]Reply, error) {
	var content struct {
		Author string `json:"author"`
	}
	if err := c.call(c.APINode, "condenser_api.get_content", []any{author, permlink}, &content); err != nil {
		return nil, err
	}
	if content.Author == "" {
		return nil, ErrNotFound
	}
	var raw []struct {
		Author   string `json:"author"`
		Permlink string `json:"permlink"`
	}
	if err := c.call(c.APINode, "condenser_api.get_content_replies", []any{author, permlink}, &raw); err != nil {
		return nil, err
	}
	replies := make([]Reply, len(raw))
	for i, r := range raw {
		replies[i] = Reply{Author: r.Author, Permlink: r.Permlink}
	}
	return replies, nil
}

// PostReply broadcasts a reply comment via the signer RPC.
func (c *Client) PostReply(parentAuthor, parentPermlink, body string) error {
	permlink := fmt.Sprintf("re-%s-%d", parentPermlink, time.Now().Unix())
	params := map[string]any{
		"author":          c.Account,
		"permlink":        permlink,
		"parent_author":   parentAuthor,
		"parent_permlink": parentPermlink,
		"body":            body,
		"posting_key":     c.Key,
	}
	return c.call(c.SignerURL, "post_comment", params, nil)
}
