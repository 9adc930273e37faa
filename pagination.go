package bizdir

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Paginator handles pagination by converting last evaluated keys into string
// cursors for clients, and in turn converting client cursors into start keys
// to continue a scan.
type Paginator interface {
	// PageCursor generates a string token from the provided start key. Implementors
	// should return an empty token if the start key is nil or empty.
	PageCursor(ctx context.Context, lastkey Item) (string, error)
	// StartKey generates a dynamodb start key from the provided cursor. Implementors
	// should return a nil item if the cursor is an empty string.
	StartKey(ctx context.Context, cursor string) (Item, error)
}

// KeyPaginator implements Paginator without server side state. The businesses
// table has a single string key, so the cursor is that key, base64url encoded.
type KeyPaginator struct {
	table *Table
}

// Paginator returns a Paginator to extract and generate client cursors.
func (t *Table) Paginator() Paginator {
	return &KeyPaginator{table: t}
}

// PageCursor implements Paginator. If lastkey is empty, an empty string is returned.
func (p *KeyPaginator) PageCursor(ctx context.Context, lastkey Item) (string, error) {
	if len(lastkey) == 0 {
		return "", nil
	}

	av, ok := lastkey[p.table.KeyAttribute].(*types.AttributeValueMemberS)
	if !ok || av.Value == "" {
		return "", fmt.Errorf("last key missing string attribute %s", p.table.KeyAttribute)
	}

	return base64.RawURLEncoding.EncodeToString([]byte(av.Value)), nil
}

// StartKey implements Paginator by decoding the key carried in cursor.
func (p *KeyPaginator) StartKey(ctx context.Context, cursor string) (Item, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%w %q", ErrInvalidCursor, cursor)
	}

	return Item{
		p.table.KeyAttribute: &types.AttributeValueMemberS{Value: string(raw)},
	}, nil
}

// MarshalStartKey marshals a page key into a page cursor to return to clients.
func MarshalStartKey(ctx context.Context, p Paginator, lastkey Item) (string, error) {
	return p.PageCursor(ctx, lastkey)
}

// UnmarshalStartKey unmarshals a page key from the provided cursor.
func UnmarshalStartKey(ctx context.Context, p Paginator, cursor string) (Item, error) {
	return p.StartKey(ctx, cursor)
}

// Page is a single scan page. Cursor is empty when the scan is exhausted.
type Page struct {
	Items        []Business `json:"Items"`
	Count        int        `json:"Count"`
	ScannedCount int        `json:"ScannedCount"`
	Cursor       string     `json:"Cursor,omitempty"`
}

// ScanPage reads at most limit businesses starting after cursor. A limit of zero
// falls back to ScanPageSize.
func (t *Table) ScanPage(ctx context.Context, client DynamoDBClient, cursor string, limit int32) (Page, error) {
	p := t.Paginator()

	startKey, err := UnmarshalStartKey(ctx, p, cursor)
	if err != nil {
		return Page{}, err
	}

	input := t.MarshalScan(startKey)
	if limit > 0 {
		input.Limit = &limit
	}

	out, err := client.Scan(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to scan %s: %w", t.TableName, err)
	}

	items, err := UnmarshalList(out.Items)
	if err != nil {
		return Page{}, err
	}

	next, err := MarshalStartKey(ctx, p, out.LastEvaluatedKey)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Items:        items,
		Count:        int(out.Count),
		ScannedCount: int(out.ScannedCount),
		Cursor:       next,
	}, nil
}
