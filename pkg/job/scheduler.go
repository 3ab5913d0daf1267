package job

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// DefaultTimeout bounds how long an unresponsive job can block dependents.
const DefaultTimeout = 5 * time.Minute

// DefaultPollInterval is the initial interval of the dependency wait.
const DefaultPollInterval = 500 * time.Millisecond

var errStillRunning = errors.New("dependent job still running")

// Scheduler admits jobs and resolves their dependency chains.
type Scheduler struct {
	db           *gorm.DB
	timeout      time.Duration
	pollInterval time.Duration
	log          *zap.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(db *gorm.DB, timeout, pollInterval time.Duration, log *zap.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{db: db, timeout: timeout, pollInterval: pollInterval, log: log}
}

// Timeout returns the soft timeout the scheduler applies.
func (s *Scheduler) Timeout() time.Duration { return s.timeout }

// CanonicalParams serializes job parameters with stable key order, so two
// logically identical requests produce byte-identical strings. That makes
// duplicate submissions findable by (user, params) alone.
func CanonicalParams(params map[string]interface{}) (string, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	// encoding/json writes map keys in sorted order.
	raw, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// New admits a job. When target is non-nil, the most recent not-yet-expired
// job against the same (target, operation) becomes the dependency. Jobs
// without a target never conflict, so they never get one.
func (s *Scheduler) New(userID uint, target *model.Ref, op model.JobOperation, text string, params map[string]interface{}) (*model.Job, error) {
	paramsStr, err := CanonicalParams(params)
	if err != nil {
		return nil, err
	}

	j := &model.Job{
		Handle:    uuid.NewString(),
		UserID:    userID,
		Operation: op,
		Status:    model.JobStatusPreparing,
		Text:      text,
		Params:    paramsStr,
	}

	if target != nil {
		j.TargetKind = target.Kind
		j.TargetID = &target.ID
		if dependent, err := s.lastUnfinished(*target, op); err != nil {
			return nil, err
		} else if dependent != nil {
			j.DependentJobID = &dependent.ID
		}
	}

	if err := s.db.Create(j).Error; err != nil {
		return nil, err
	}

	s.log.Info("job admitted",
		zap.String("handle", j.Handle),
		zap.String("operation", op.String()),
		zap.Uintp("target_id", j.TargetID),
		zap.Uintp("dependent_job_id", j.DependentJobID))

	return j, nil
}

// NewCreate admits a create job.
func (s *Scheduler) NewCreate(userID uint, target model.Ref, text string, params map[string]interface{}) (*model.Job, error) {
	return s.New(userID, &target, model.JobOperationCreate, text, params)
}

// NewEdit admits an edit job.
func (s *Scheduler) NewEdit(userID uint, target model.Ref, text string, params map[string]interface{}) (*model.Job, error) {
	return s.New(userID, &target, model.JobOperationEdit, text, params)
}

// NewDelete admits a delete job.
func (s *Scheduler) NewDelete(userID uint, target model.Ref, text string, params map[string]interface{}) (*model.Job, error) {
	return s.New(userID, &target, model.JobOperationDelete, text, params)
}

// NewCopy admits a copy job.
func (s *Scheduler) NewCopy(userID uint, target model.Ref, text string, params map[string]interface{}) (*model.Job, error) {
	return s.New(userID, &target, model.JobOperationCopy, text, params)
}

// NewExport admits a bulk export job. Exports have no target and therefore
// no dependency.
func (s *Scheduler) NewExport(userID uint, text string, params map[string]interface{}) (*model.Job, error) {
	return s.New(userID, nil, model.JobOperationExport, text, params)
}

// lastUnfinished returns the most recent job against (target, operation)
// that is not finished, including the soft timeout.
func (s *Scheduler) lastUnfinished(target model.Ref, op model.JobOperation) (*model.Job, error) {
	var candidates []model.Job
	err := s.db.Where("target_kind = ? AND target_id = ? AND operation = ? AND status IN ?",
		target.Kind, target.ID, op,
		[]model.JobStatus{model.JobStatusPreparing, model.JobStatusProcessing}).
		Order("id desc").Limit(10).Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range candidates {
		if !candidates[i].IsFinished(now, s.timeout) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// Get resolves a job by its handle.
func (s *Scheduler) Get(handle string) (*model.Job, error) {
	var j model.Job
	tx := s.db.Where("handle = ?", handle).First(&j)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, tx.Error
	}
	return &j, nil
}

// FindDuplicate returns an unfinished job by the same user with
// byte-identical params, if one exists.
func (s *Scheduler) FindDuplicate(userID uint, params map[string]interface{}) (*model.Job, error) {
	paramsStr, err := CanonicalParams(params)
	if err != nil {
		return nil, err
	}

	var candidates []model.Job
	err = s.db.Where("user_id = ? AND params = ? AND status IN ?",
		userID, paramsStr,
		[]model.JobStatus{model.JobStatusPreparing, model.JobStatusProcessing}).
		Order("id desc").Limit(10).Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range candidates {
		if !candidates[i].IsFinished(now, s.timeout) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// WaitDependentJob blocks until the job's dependency reports finished. The
// wait is cooperative polling with exponential backoff, capped by the job
// timeout; the soft timeout on the dependency guarantees it unblocks within
// that ceiling even if the dependent worker died.
func (s *Scheduler) WaitDependentJob(ctx context.Context, j *model.Job) error {
	if j.DependentJobID == nil {
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.pollInterval
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = s.timeout + time.Minute

	check := func() error {
		var dependent model.Job
		tx := s.db.Where("id = ?", *j.DependentJobID).First(&dependent)
		if tx.Error != nil {
			if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return backoff.Permanent(tx.Error)
		}
		if dependent.IsFinished(time.Now(), s.timeout) {
			return nil
		}
		return errStillRunning
	}

	return backoff.Retry(check, backoff.WithContext(policy, ctx))
}

// Claim transitions a Preparing job to Processing. The guard is in the
// update predicate, so a job canceled or claimed in between loses the race
// and ErrJobConflict is returned.
func (s *Scheduler) Claim(j *model.Job) error {
	tx := s.db.Model(&model.Job{}).
		Where("id = ? AND status = ?", j.ID, model.JobStatusPreparing).
		Update("status", model.JobStatusProcessing)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrJobConflict
	}
	j.Status = model.JobStatusProcessing
	return nil
}

// Finish records a terminal status. Finishing an already-terminal job is a
// no-op: terminal states are absorbing.
func (s *Scheduler) Finish(j *model.Job, status model.JobStatus) error {
	if !status.IsTerminal() {
		return errors.New("finish requires a terminal status")
	}
	tx := s.db.Model(&model.Job{}).
		Where("id = ? AND status IN ?", j.ID,
			[]model.JobStatus{model.JobStatusPreparing, model.JobStatusProcessing}).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		j.Status = status
	}
	return nil
}

// Cancel marks a job canceled. Workers observe it at the next state check;
// in-flight work is not interrupted.
func (s *Scheduler) Cancel(handle string) error {
	j, err := s.Get(handle)
	if err != nil {
		return err
	}
	return s.Finish(j, model.JobStatusCanceled)
}

// ExpireStale marks Processing jobs past the soft timeout as Timeout, making
// the implicit expiry visible in the record.
func (s *Scheduler) ExpireStale() (int64, error) {
	deadline := time.Now().Add(-s.timeout)
	tx := s.db.Model(&model.Job{}).
		Where("status = ? AND updated_at < ?", model.JobStatusProcessing, deadline).
		Update("status", model.JobStatusTimeout)
	return tx.RowsAffected, tx.Error
}

// NextReady returns the oldest Preparing job, or nil when the queue is
// empty.
func (s *Scheduler) NextReady() (*model.Job, error) {
	var j model.Job
	tx := s.db.Where("status = ?", model.JobStatusPreparing).Order("id").First(&j)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &j, nil
}
