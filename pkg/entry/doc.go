// Package entry implements the entry lifecycle: creation, soft deletion,
// copying and bulk export. These are the mutations the job worker executes;
// the HTTP layer only admits jobs for them.
//
// Deletion is soft. An entry and its attributes are deactivated, never
// removed, so referrals from other entries keep resolving against history
// and the entry can be audited after the fact.
package entry
