package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisimpson/bizdir"
	"github.com/nisimpson/bizdir/api"
	"github.com/nisimpson/bizdir/config"
	"github.com/nisimpson/bizdir/dynamock"
	"github.com/nisimpson/bizdir/view"
)

func newServer(t *testing.T) (string, *dynamock.MemoryClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table := bizdir.NewTable("Businesses")
	mem := dynamock.NewBusinessMemoryClient(table)
	srv := httptest.NewServer(api.NewRouter(bizdir.NewStore(mem, table), api.Options{}))
	t.Cleanup(srv.Close)
	return srv.URL, mem
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BIZDIR_API_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreateListDelete(t *testing.T) {
	url, _ := newServer(t)

	for _, in := range []bizdir.CreateInput{
		{Name: "Acme Corp", Status: "active"},
		{Name: "Globex", Status: "inactive"},
		{Name: "Acme Labs", Status: "active"},
	} {
		out, err := execute(t, "--api-url", url, "create", "--name", in.Name, "--status", in.Status)
		require.NoError(t, err)
		assert.Contains(t, out, "Successfully added business Business_")
	}

	out, err := execute(t, "--api-url", url, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Business ID")
	assert.Contains(t, out, "Globex")
	assert.Contains(t, out, "Page 1 of 1 (3 of 3 businesses)")

	out, err = execute(t, "--api-url", url, "list", "--query", "ACME", "--status", "active", "--sort", "name", "--desc", "--json")
	require.NoError(t, err)
	var page []bizdir.Business
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page, 2)
	assert.Equal(t, "Acme Labs", page[0].Name)
	assert.Equal(t, "Acme Corp", page[1].Name)

	out, err = execute(t, "--api-url", url, "delete", "Business_002")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully deleted business Business_002")

	out, err = execute(t, "--api-url", url, "list", "--query", "globex")
	require.NoError(t, err)
	assert.Contains(t, out, "No businesses found")
}

func TestList_APIError(t *testing.T) {
	url, mem := newServer(t)
	mem.FailOn(dynamock.OpScan, errors.New("unavailable"))

	_, err := execute(t, "--api-url", url, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not fetch data")
}

func TestList_UnknownField(t *testing.T) {
	url, _ := newServer(t)

	_, err := execute(t, "--api-url", url, "list", "--sort", "owner")
	assert.EqualError(t, err, `unknown field "owner"`)
}

func TestDelete_RequiresID(t *testing.T) {
	_, err := execute(t, "delete")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bizdir.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "bizdir.yaml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Port, cfg.Server.Port)
	assert.Equal(t, config.DefaultConfig().Tables, cfg.Tables)

	_, err = execute(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ForceReplacesInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bizdir.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o644))

	_, err := execute(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestListOptions_State(t *testing.T) {
	items := []bizdir.Business{
		{BusID: "Business_003", Name: "Globex", Status: "inactive", CreatedAt: "2024-01-03T12:00:00.000Z"},
		{BusID: "Business_001", Name: "Acme Corp", Status: "active", CreatedAt: "2024-01-01T12:00:00.000Z"},
		{BusID: "Business_002", Name: "Acme Labs", Status: "active", CreatedAt: "2024-01-02T12:00:00.000Z"},
	}
	base := listOptions{
		searchField: "name",
		status:      "All",
		sortField:   "createdAt",
		page:        1,
	}

	tests := []struct {
		name string
		edit func(*listOptions)
		want []string
	}{
		{name: "defaults", edit: func(*listOptions) {}, want: []string{"Business_001", "Business_002", "Business_003"}},
		{name: "descending", edit: func(o *listOptions) { o.desc = true }, want: []string{"Business_003", "Business_002", "Business_001"}},
		{name: "sort by id", edit: func(o *listOptions) { o.sortField = "busId" }, want: []string{"Business_001", "Business_002", "Business_003"}},
		{name: "search field", edit: func(o *listOptions) { o.searchField = "status"; o.query = "inact" }, want: []string{"Business_003"}},
		{name: "date range", edit: func(o *listOptions) { o.from = "2024-01-02"; o.to = "2024-01-03" }, want: []string{"Business_002", "Business_003"}},
		{name: "second page", edit: func(o *listOptions) { o.perPage = 2; o.page = 2 }, want: []string{"Business_003"}},
		{name: "all ignores page", edit: func(o *listOptions) { o.perPage = 5; o.page = 3; o.all = true }, want: []string{"Business_001", "Business_002", "Business_003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := base
			tt.edit(&o)

			s, err := o.state(items)
			require.NoError(t, err)

			var got []string
			for _, b := range view.Window(s) {
				got = append(got, b.BusID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
