package dynamock

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/bizdir"
)

// Operation names a DynamoDB API call for failure injection.
type Operation string

const (
	OpPutItem    Operation = "PutItem"
	OpDeleteItem Operation = "DeleteItem"
	OpUpdateItem Operation = "UpdateItem"
	OpScan       Operation = "Scan"
)

// MemoryClient is an in-memory stand-in for DynamoDB covering the requests bizdir
// issues: conditional puts, deletes by key, paged scans, ADD/SET updates and
// table creation. All operations are serialized, so an ADD update is atomic the
// same way it is in DynamoDB.
type MemoryClient struct {
	mu       sync.Mutex
	tables   map[string]*memoryTable
	failures map[Operation]error
	calls    map[Operation]int
}

type memoryTable struct {
	key   string
	items map[string]bizdir.Item
}

// Ensure MemoryClient implements the client interfaces used by bizdir
var (
	_ DynamoDBAPI         = (*MemoryClient)(nil)
	_ bizdir.SchemaClient = (*MemoryClient)(nil)
)

// NewMemoryClient returns an empty MemoryClient without tables.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		tables:   make(map[string]*memoryTable),
		failures: make(map[Operation]error),
		calls:    make(map[Operation]int),
	}
}

// NewBusinessMemoryClient returns a MemoryClient with the businesses and counter
// tables of table already created.
func NewBusinessMemoryClient(table *bizdir.Table) *MemoryClient {
	m := NewMemoryClient()
	m.AddTable(table.TableName, table.KeyAttribute)
	m.AddTable(table.CounterTableName, table.CounterKeyAttribute)
	return m
}

// AddTable creates an empty table keyed by the string attribute hashKey.
func (m *MemoryClient) AddTable(name, hashKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = &memoryTable{key: hashKey, items: make(map[string]bizdir.Item)}
}

// FailOn makes every subsequent call of op return err. A nil err clears the failure.
func (m *MemoryClient) FailOn(op Operation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op was invoked, failed calls included.
func (m *MemoryClient) Calls(op Operation) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Len returns the number of items in table.
func (m *MemoryClient) Len(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[table]; ok {
		return len(t.items)
	}
	return 0
}

// Items returns a copy of every item in table ordered by key.
func (m *MemoryClient) Items(table string) []bizdir.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return nil
	}
	out := make([]bizdir.Item, 0, len(t.items))
	for _, k := range t.sortedKeys() {
		out = append(out, cloneItem(t.items[k]))
	}
	return out
}

func (m *MemoryClient) begin(op Operation, tableName *string) (*memoryTable, error) {
	m.calls[op]++
	if err := m.failures[op]; err != nil {
		return nil, err
	}
	t, ok := m.tables[aws.ToString(tableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + aws.ToString(tableName))}
	}
	return t, nil
}

// PutItem stores a copy of the item. Conditions of the form attribute_not_exists
// fail when an item with the same key is present.
func (m *MemoryClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin(OpPutItem, params.TableName)
	if err != nil {
		return nil, err
	}

	key, err := t.keyOf(params.Item)
	if err != nil {
		return nil, err
	}

	if cond := aws.ToString(params.ConditionExpression); strings.Contains(cond, "attribute_not_exists") {
		if _, exists := t.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}

	t.items[key] = cloneItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem removes the item with the given key. Missing items are not an error.
func (m *MemoryClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin(OpDeleteItem, params.TableName)
	if err != nil {
		return nil, err
	}

	key, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}

	delete(t.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Scan returns items in key order, honoring Limit and ExclusiveStartKey.
func (m *MemoryClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin(OpScan, params.TableName)
	if err != nil {
		return nil, err
	}

	keys := t.sortedKeys()
	start := 0
	if len(params.ExclusiveStartKey) > 0 {
		after, err := t.keyOf(params.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		start, _ = slices.BinarySearch(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}

	end := len(keys)
	if limit := int(aws.ToInt32(params.Limit)); limit > 0 && start+limit < end {
		end = start + limit
	}

	out := &dynamodb.ScanOutput{Items: make([]bizdir.Item, 0, end-start)}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, cloneItem(t.items[k]))
	}
	out.Count = int32(len(out.Items))
	out.ScannedCount = out.Count

	if end < len(keys) {
		out.LastEvaluatedKey = bizdir.Item{
			t.key: &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}

	return out, nil
}

// UpdateItem applies SET and ADD clauses whose operands are plain attribute names
// and values, which covers what the expression builder produces for counters.
func (m *MemoryClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin(OpUpdateItem, params.TableName)
	if err != nil {
		return nil, err
	}

	key, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}

	item, exists := t.items[key]
	if exists {
		item = cloneItem(item)
	} else {
		item = cloneItem(params.Key)
	}

	updated, err := applyUpdate(item, params)
	if err != nil {
		return nil, err
	}
	t.items[key] = item

	out := &dynamodb.UpdateItemOutput{}
	switch params.ReturnValues {
	case types.ReturnValueUpdatedNew:
		out.Attributes = make(bizdir.Item, len(updated))
		for _, name := range updated {
			out.Attributes[name] = item[name]
		}
	case types.ReturnValueAllNew:
		out.Attributes = cloneItem(item)
	}

	return out, nil
}

// CreateTable registers an empty table keyed by the hash key of the schema.
func (m *MemoryClient) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := aws.ToString(params.TableName)
	if _, ok := m.tables[name]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists: " + name)}
	}

	for _, k := range params.KeySchema {
		if k.KeyType == types.KeyTypeHash {
			m.tables[name] = &memoryTable{key: aws.ToString(k.AttributeName), items: make(map[string]bizdir.Item)}
			return &dynamodb.CreateTableOutput{
				TableDescription: &types.TableDescription{TableName: params.TableName, TableStatus: types.TableStatusActive},
			}, nil
		}
	}

	return nil, fmt.Errorf("table %s has no hash key", name)
}

// DescribeTable reports every existing table as active.
func (m *MemoryClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := aws.ToString(params.TableName)
	if _, ok := m.tables[name]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + name)}
	}

	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableName: params.TableName, TableStatus: types.TableStatusActive},
	}, nil
}

func (t *memoryTable) keyOf(item bizdir.Item) (string, error) {
	av, ok := item[t.key].(*types.AttributeValueMemberS)
	if !ok || av.Value == "" {
		return "", fmt.Errorf("validation error: missing string key attribute %s", t.key)
	}
	return av.Value, nil
}

func (t *memoryTable) sortedKeys() []string {
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// applyUpdate mutates item and returns the names of the attributes it touched.
func applyUpdate(item bizdir.Item, params *dynamodb.UpdateItemInput) ([]string, error) {
	var updated []string

	resolveName := func(tok string) (string, error) {
		if strings.HasPrefix(tok, "#") {
			name, ok := params.ExpressionAttributeNames[tok]
			if !ok {
				return "", fmt.Errorf("validation error: undefined attribute name %s", tok)
			}
			return name, nil
		}
		return tok, nil
	}
	resolveValue := func(tok string) (types.AttributeValue, error) {
		v, ok := params.ExpressionAttributeValues[tok]
		if !ok {
			return nil, fmt.Errorf("validation error: undefined attribute value %s", tok)
		}
		return v, nil
	}

	for _, line := range strings.Split(aws.ToString(params.UpdateExpression), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		action, rest, _ := strings.Cut(line, " ")
		for _, clause := range strings.Split(rest, ",") {
			var nameTok, valueTok string
			switch strings.ToUpper(action) {
			case "SET":
				lhs, rhs, ok := strings.Cut(clause, "=")
				if !ok {
					return nil, fmt.Errorf("validation error: malformed SET clause %q", clause)
				}
				nameTok, valueTok = strings.TrimSpace(lhs), strings.TrimSpace(rhs)
			case "ADD":
				fields := strings.Fields(clause)
				if len(fields) != 2 {
					return nil, fmt.Errorf("validation error: malformed ADD clause %q", clause)
				}
				nameTok, valueTok = fields[0], fields[1]
			default:
				return nil, fmt.Errorf("validation error: unsupported update action %s", action)
			}

			name, err := resolveName(nameTok)
			if err != nil {
				return nil, err
			}
			value, err := resolveValue(valueTok)
			if err != nil {
				return nil, err
			}

			if strings.EqualFold(action, "ADD") {
				value, err = addNumbers(item[name], value)
				if err != nil {
					return nil, err
				}
			}

			item[name] = value
			updated = append(updated, name)
		}
	}

	return updated, nil
}

func addNumbers(current, delta types.AttributeValue) (types.AttributeValue, error) {
	d, ok := delta.(*types.AttributeValueMemberN)
	if !ok {
		return nil, fmt.Errorf("validation error: ADD requires a number operand")
	}
	dv, err := strconv.ParseInt(d.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	var cv int64
	if current != nil {
		c, ok := current.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("validation error: ADD target is not a number")
		}
		if cv, err = strconv.ParseInt(c.Value, 10, 64); err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
	}

	return &types.AttributeValueMemberN{Value: strconv.FormatInt(cv+dv, 10)}, nil
}

// cloneItem copies the top level of item. Attribute values are treated as immutable.
func cloneItem(item bizdir.Item) bizdir.Item {
	out := make(bizdir.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
