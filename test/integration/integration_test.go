package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/entry"
	"github.com/cmdbkit/cmdbkit/pkg/job"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
	"github.com/cmdbkit/cmdbkit/pkg/search"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

// unreachableIndex stands in for a search backend that is down.
type unreachableIndex struct{}

func (unreachableIndex) Register(entryID uint, doc *index.Document) error {
	return fmt.Errorf("register entry %d: %w", entryID, index.ErrIndexUnavailable)
}

func (unreachableIndex) Delete(entryID uint) error { return index.ErrIndexUnavailable }

func (unreachableIndex) Search(q *index.Query) (*index.Result, error) {
	return nil, index.ErrIndexUnavailable
}

func TestIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc, err := NewTestContext(ctx)
	require.NoError(t, err)
	defer tc.Close(ctx)

	admin := model.User{Username: "admin", APIKey: "integration-key", IsSuperuser: true, IsActive: true}
	require.NoError(t, tc.DB.Create(&admin).Error)

	entity := model.Entity{ACLObject: model.ACLObject{
		Name: "server", IsPublic: true, DefaultPermission: model.LevelNothing,
		IsActive: true, CreatedByID: admin.ID,
	}}
	require.NoError(t, tc.DB.Create(&entity).Error)

	hostAttr := model.EntityAttr{
		ACLObject: model.ACLObject{
			Name: "hostname", IsPublic: true, DefaultPermission: model.LevelNothing,
			IsActive: true, CreatedByID: admin.ID,
		},
		Type:           model.TypeString,
		ParentEntityID: entity.ID,
	}
	require.NoError(t, tc.DB.Create(&hostAttr).Error)

	tagsAttr := model.EntityAttr{
		ACLObject: model.ACLObject{
			Name: "tags", IsPublic: true, DefaultPermission: model.LevelNothing,
			IsActive: true, CreatedByID: admin.ID,
		},
		Index:          1,
		Type:           model.TypeArrayString,
		ParentEntityID: entity.ID,
	}
	require.NoError(t, tc.DB.Create(&tagsAttr).Error)

	idx := index.NewMemory()
	registry := schema.NewGormRegistry(tc.DB)
	evaluator := acl.NewEvaluator(tc.DB)
	values := eav.NewStore(tc.DB, registry, evaluator, nil)
	indexer := search.NewIndexer(tc.DB, values, idx, nil)
	svc := entry.NewService(tc.DB, values, evaluator, indexer, nil)

	principal, err := evaluator.LoadPrincipal(admin.ID)
	require.NoError(t, err)

	t.Run("entry lifecycle", func(t *testing.T) {
		created, err := svc.Create(principal, entity.ID, "web-01")
		require.NoError(t, err)

		// Attributes are materialized from the schema on create.
		var attrs []model.Attribute
		require.NoError(t, tc.DB.Where("parent_entry_id = ?", created.ID).Find(&attrs).Error)
		require.Len(t, attrs, 2)

		var host *model.Attribute
		for i := range attrs {
			if attrs[i].Name == "hostname" {
				host = &attrs[i]
			}
		}
		require.NotNil(t, host)

		_, err = values.AddValue(admin.ID, host, eav.String("web-01.example.com"))
		require.NoError(t, err)
		_, err = values.AddValue(admin.ID, host, eav.String("web-01.internal"))
		require.NoError(t, err)

		latest, err := values.GetLatest(admin.ID, host)
		require.NoError(t, err)
		decoded, err := values.Decode(latest)
		require.NoError(t, err)
		assert.Equal(t, eav.String("web-01.internal"), decoded)

		history, err := values.GetHistory(host, 10, 0)
		require.NoError(t, err)
		require.Len(t, history, 2)

		// Writing the identical value again must not create a version.
		updated, err := values.IsUpdated(host, eav.String("web-01.internal"))
		require.NoError(t, err)
		assert.False(t, updated)

		// Duplicate names within an entity are rejected.
		_, err = svc.Create(principal, entity.ID, "web-01")
		assert.ErrorIs(t, err, entry.ErrNameTaken)

		copied, err := svc.Copy(principal, created.ID, "web-02")
		require.NoError(t, err)
		var copiedAttrs []model.Attribute
		require.NoError(t, tc.DB.Where("parent_entry_id = ? AND name = ?", copied.ID, "hostname").Find(&copiedAttrs).Error)
		require.Len(t, copiedAttrs, 1)
		latest, err = values.GetLatest(admin.ID, &copiedAttrs[0])
		require.NoError(t, err)
		decoded, err = values.Decode(latest)
		require.NoError(t, err)
		assert.Equal(t, eav.String("web-01.internal"), decoded)

		require.NoError(t, svc.Delete(principal, copied.ID))
		var gone model.Entry
		require.NoError(t, tc.DB.Where("id = ?", copied.ID).First(&gone).Error)
		assert.False(t, gone.IsActive)
	})

	t.Run("search", func(t *testing.T) {
		// Direct value-store writes don't refresh the index.
		var web model.Entry
		require.NoError(t, tc.DB.Where("name = ? AND is_active = ?", "web-01", true).First(&web).Error)
		require.NoError(t, indexer.RegisterEntry(admin.ID, web.ID))

		compiler := search.NewCompiler(tc.DB, values, evaluator, idx, nil)
		res, err := compiler.Search(principal, []uint{entity.ID}, []search.Hint{
			{Name: "hostname", Keyword: "web-01"},
		}, search.Options{Limit: 10})
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, "web-01", res.Rows[0].EntryName)
	})

	t.Run("index outage", func(t *testing.T) {
		down := unreachableIndex{}
		downIndexer := search.NewIndexer(tc.DB, values, down, nil)
		downSvc := entry.NewService(tc.DB, values, evaluator, downIndexer, nil)

		// A create is not done until the entry is findable.
		_, err := downSvc.Create(principal, entity.ID, "web-03")
		assert.ErrorIs(t, err, index.ErrIndexUnavailable)

		// Import refreshes the index per entry and fails the same way, even
		// when every value is unchanged.
		doc := []byte("- entity: server\n" +
			"  entries:\n" +
			"    - name: web-01\n" +
			"      attrs:\n" +
			"        hostname: web-01.internal\n")
		_, err = downSvc.Import(principal, doc)
		assert.ErrorIs(t, err, index.ErrIndexUnavailable)
	})

	t.Run("job queue", func(t *testing.T) {
		scheduler := job.NewScheduler(tc.DB, time.Minute, 10*time.Millisecond, nil)
		target := model.Ref{Kind: model.KindEntry, ID: 42}

		first, err := scheduler.NewEdit(admin.ID, target, "", map[string]interface{}{"entry_id": 42})
		require.NoError(t, err)
		assert.Nil(t, first.DependentJobID)

		// A second job on the same target must depend on the first.
		second, err := scheduler.NewEdit(admin.ID, target, "", map[string]interface{}{"entry_id": 42})
		require.NoError(t, err)
		require.NotNil(t, second.DependentJobID)
		assert.Equal(t, first.ID, *second.DependentJobID)

		require.NoError(t, scheduler.Claim(first))
		// A claimed job cannot be claimed twice.
		assert.ErrorIs(t, scheduler.Claim(first), job.ErrJobConflict)

		require.NoError(t, scheduler.Finish(first, model.JobStatusDone))

		// With the dependency finished, the wait returns promptly.
		waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
		defer waitCancel()
		require.NoError(t, scheduler.WaitDependentJob(waitCtx, second))

		require.NoError(t, scheduler.Cancel(second.Handle))
		canceled, err := scheduler.Get(second.Handle)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusCanceled, canceled.Status)
		assert.False(t, canceled.IsReadyToProcess())
	})
}
