// Package job serializes conflicting asynchronous mutations.
//
// A new job against a target records the most recent unfinished job with the
// same (target, operation) as its dependency and must wait for it before
// running. Waiting is cooperative polling with backoff, bounded by the job
// timeout: a job whose updated_at is older than the timeout counts as
// finished whatever its recorded status, so a crashed worker can delay
// dependents but never block them forever.
package job
