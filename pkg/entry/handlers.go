package entry

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/job"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/search"
)

// RegisterJobHandlers binds the entry lifecycle operations to the job
// registry. Each handler resolves the submitting user into a principal, so
// permission checks on the worker match what the API would have enforced.
func RegisterJobHandlers(registry *job.Registry, svc *Service, evaluator *acl.Evaluator, indexer *search.Indexer, db *gorm.DB) {
	registry.Register(model.JobOperationCreate, func(ctx context.Context, j *model.Job) error {
		principal, params, err := prepare(evaluator, j)
		if err != nil {
			return err
		}
		entityID, err := uintParam(params, "entity_id")
		if err != nil {
			return err
		}
		name, _ := params["name"].(string)
		if name == "" {
			return fmt.Errorf("create job is missing a name")
		}
		_, err = svc.Create(principal, entityID, name)
		return err
	})

	registry.Register(model.JobOperationEdit, func(ctx context.Context, j *model.Job) error {
		principal, params, err := prepare(evaluator, j)
		if err != nil {
			return err
		}
		entryID, err := uintParam(params, "entry_id")
		if err != nil {
			return err
		}
		return indexer.RegisterEntry(principal.UserID, entryID)
	})

	registry.Register(model.JobOperationDelete, func(ctx context.Context, j *model.Job) error {
		principal, params, err := prepare(evaluator, j)
		if err != nil {
			return err
		}
		entryID, err := uintParam(params, "entry_id")
		if err != nil {
			return err
		}
		return svc.Delete(principal, entryID)
	})

	registry.Register(model.JobOperationCopy, func(ctx context.Context, j *model.Job) error {
		principal, params, err := prepare(evaluator, j)
		if err != nil {
			return err
		}
		entryID, err := uintParam(params, "entry_id")
		if err != nil {
			return err
		}
		rawNames, _ := params["names"].([]interface{})
		for _, raw := range rawNames {
			name, ok := raw.(string)
			if !ok || name == "" {
				continue
			}
			if _, err := svc.Copy(principal, entryID, name); err != nil {
				return err
			}
		}
		return nil
	})

	registry.Register(model.JobOperationExport, func(ctx context.Context, j *model.Job) error {
		principal, params, err := prepare(evaluator, j)
		if err != nil {
			return err
		}
		var entityIDs []uint
		if rawIDs, ok := params["entity_ids"].([]interface{}); ok {
			for _, raw := range rawIDs {
				if id, ok := raw.(float64); ok {
					entityIDs = append(entityIDs, uint(id))
				}
			}
		}
		doc, err := svc.Export(principal, entityIDs)
		if err != nil {
			return err
		}
		// The export result rides on the job row itself.
		return db.Model(&model.Job{}).Where("id = ?", j.ID).Update("text", doc).Error
	})
}

func prepare(evaluator *acl.Evaluator, j *model.Job) (*acl.Principal, map[string]interface{}, error) {
	principal, err := evaluator.LoadPrincipal(j.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("principal lookup failed: %w", err)
	}

	params := map[string]interface{}{}
	if j.Params != "" {
		if err := json.Unmarshal([]byte(j.Params), &params); err != nil {
			return nil, nil, fmt.Errorf("malformed job params: %w", err)
		}
	}
	return principal, params, nil
}

func uintParam(params map[string]interface{}, key string) (uint, error) {
	raw, ok := params[key].(float64)
	if !ok {
		return 0, fmt.Errorf("job params are missing %q", key)
	}
	return uint(raw), nil
}
