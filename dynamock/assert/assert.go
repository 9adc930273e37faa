// Package assert provides fluent assertion utilities for testing DynamoDB items
// and bizdir businesses.
//
// # Usage
//
//	import "github.com/nisimpson/bizdir/dynamock/assert"
//
//	// Assert on DynamoDB items
//	assert.Items(t, mem.Items("Businesses")).
//		HasCount(3).
//		ContainsBusiness("Business_001").
//		HasAttribute("status", "active")
//
//	// Assert on businesses
//	assert.Businesses(t, list).
//		HasCount(2).
//		Contains("Business_001").
//		Excludes("Business_002").
//		HasStrictlyIncreasingIDs()
//
//	// Assert on a single item
//	assert.DynamoDBItem(t, item).
//		HasKey("busId", "Business_001").
//		HasAttribute("name", "Acme")
package assert

import (
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/bizdir"
)

// BusinessIDPattern matches a well formed business id.
var BusinessIDPattern = regexp.MustCompile(`^Business_\d{3,}$`)

// ItemsAssertion provides fluent assertions for DynamoDB items.
type ItemsAssertion struct {
	t     testing.TB
	items []map[string]types.AttributeValue
}

// Items creates a new ItemsAssertion for the given DynamoDB items.
func Items(t testing.TB, items []map[string]types.AttributeValue) *ItemsAssertion {
	return &ItemsAssertion{
		t:     t,
		items: items,
	}
}

// HasCount asserts that the items collection has the expected count.
func (a *ItemsAssertion) HasCount(expected int) *ItemsAssertion {
	a.t.Helper()
	if len(a.items) != expected {
		a.t.Errorf("expected %d items, got %d", expected, len(a.items))
	}
	return a
}

// IsEmpty asserts that the items collection is empty.
func (a *ItemsAssertion) IsEmpty() *ItemsAssertion {
	a.t.Helper()
	return a.HasCount(0)
}

// IsNotEmpty asserts that the items collection is not empty.
func (a *ItemsAssertion) IsNotEmpty() *ItemsAssertion {
	a.t.Helper()
	if len(a.items) == 0 {
		a.t.Error("expected items to not be empty")
	}
	return a
}

// ContainsBusiness asserts that the items contain a business with the given id.
func (a *ItemsAssertion) ContainsBusiness(busID string) *ItemsAssertion {
	a.t.Helper()
	for _, item := range a.items {
		if stringAttr(item, bizdir.AttributeNameBusID) == busID {
			return a
		}
	}

	a.t.Errorf("expected to find business %s in items", busID)
	return a
}

// HasAttribute asserts that at least one item has the specified attribute with the expected value.
func (a *ItemsAssertion) HasAttribute(attributeName, expectedValue string) *ItemsAssertion {
	a.t.Helper()
	for _, item := range a.items {
		if v, ok := item[attributeName].(*types.AttributeValueMemberS); ok && v.Value == expectedValue {
			return a
		}
	}

	a.t.Errorf("expected to find attribute %s with value %s in items", attributeName, expectedValue)
	return a
}

// BusinessesAssertion provides fluent assertions for businesses.
type BusinessesAssertion struct {
	t          testing.TB
	businesses []bizdir.Business
}

// Businesses creates a new BusinessesAssertion for the given businesses.
func Businesses(t testing.TB, businesses []bizdir.Business) *BusinessesAssertion {
	return &BusinessesAssertion{
		t:          t,
		businesses: businesses,
	}
}

// HasCount asserts that the collection has the expected count.
func (a *BusinessesAssertion) HasCount(expected int) *BusinessesAssertion {
	a.t.Helper()
	if len(a.businesses) != expected {
		a.t.Errorf("expected %d businesses, got %d", expected, len(a.businesses))
	}
	return a
}

// Contains asserts that a business with busID is present.
func (a *BusinessesAssertion) Contains(busID string) *BusinessesAssertion {
	a.t.Helper()
	if !a.has(busID) {
		a.t.Errorf("expected to find business %s", busID)
	}
	return a
}

// Excludes asserts that no business with busID is present.
func (a *BusinessesAssertion) Excludes(busID string) *BusinessesAssertion {
	a.t.Helper()
	if a.has(busID) {
		a.t.Errorf("expected business %s to be absent", busID)
	}
	return a
}

// HasWellFormedIDs asserts that every id matches BusinessIDPattern.
func (a *BusinessesAssertion) HasWellFormedIDs() *BusinessesAssertion {
	a.t.Helper()
	for _, b := range a.businesses {
		if !BusinessIDPattern.MatchString(b.BusID) {
			a.t.Errorf("business id %q is not well formed", b.BusID)
		}
	}
	return a
}

// HasStrictlyIncreasingIDs asserts that the numeric id suffixes increase in slice order.
func (a *BusinessesAssertion) HasStrictlyIncreasingIDs() *BusinessesAssertion {
	a.t.Helper()
	var prev int64 = -1
	for _, b := range a.businesses {
		n, err := bizdir.ParseBusinessID(b.BusID)
		if err != nil {
			a.t.Errorf("unexpected id: %v", err)
			return a
		}
		if n <= prev {
			a.t.Errorf("expected ids to increase, %s follows %s", b.BusID, bizdir.FormatBusinessID(prev))
		}
		prev = n
	}
	return a
}

// HasIDs asserts that the businesses carry exactly ids, in order.
func (a *BusinessesAssertion) HasIDs(ids ...string) *BusinessesAssertion {
	a.t.Helper()
	if len(ids) != len(a.businesses) {
		a.t.Errorf("expected ids %v, got %v", ids, a.ids())
		return a
	}
	for i, id := range ids {
		if a.businesses[i].BusID != id {
			a.t.Errorf("expected ids %v, got %v", ids, a.ids())
			return a
		}
	}
	return a
}

func (a *BusinessesAssertion) has(busID string) bool {
	for _, b := range a.businesses {
		if b.BusID == busID {
			return true
		}
	}
	return false
}

func (a *BusinessesAssertion) ids() []string {
	out := make([]string, len(a.businesses))
	for i, b := range a.businesses {
		out[i] = b.BusID
	}
	return out
}

// DynamoDBItemAssertion provides fluent assertions for individual DynamoDB items.
type DynamoDBItemAssertion struct {
	t    testing.TB
	item map[string]types.AttributeValue
}

// DynamoDBItem creates a new DynamoDBItemAssertion for the given item.
func DynamoDBItem(t testing.TB, item map[string]types.AttributeValue) *DynamoDBItemAssertion {
	return &DynamoDBItemAssertion{
		t:    t,
		item: item,
	}
}

// HasKey asserts that the item has the specified key with the expected value.
func (a *DynamoDBItemAssertion) HasKey(keyName, expectedValue string) *DynamoDBItemAssertion {
	a.t.Helper()
	if attr, exists := a.item[keyName]; !exists {
		a.t.Errorf("item missing key %s", keyName)
	} else if attrStr, ok := attr.(*types.AttributeValueMemberS); !ok {
		a.t.Errorf("key %s is not a string", keyName)
	} else if attrStr.Value != expectedValue {
		a.t.Errorf("key %s expected %s, got %s", keyName, expectedValue, attrStr.Value)
	}
	return a
}

// HasAttribute asserts that the item has the specified attribute with the expected value.
func (a *DynamoDBItemAssertion) HasAttribute(attrName, expectedValue string) *DynamoDBItemAssertion {
	a.t.Helper()
	return a.HasKey(attrName, expectedValue)
}

// HasNumber asserts that the item has a numeric attribute with the expected value.
func (a *DynamoDBItemAssertion) HasNumber(attrName, expectedValue string) *DynamoDBItemAssertion {
	a.t.Helper()
	if attr, exists := a.item[attrName]; !exists {
		a.t.Errorf("item missing attribute %s", attrName)
	} else if attrN, ok := attr.(*types.AttributeValueMemberN); !ok {
		a.t.Errorf("attribute %s is not a number", attrName)
	} else if attrN.Value != expectedValue {
		a.t.Errorf("attribute %s expected %s, got %s", attrName, expectedValue, attrN.Value)
	}
	return a
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
