// Package policy decides who may read or change tasks and users.
//
// Every function here is pure: it takes the caller's Identity and the target
// explicitly and returns either a decision (an error from internal/errors) or
// a storage-agnostic filter/change set that the repositories translate into
// their own query language. Role checks live here and nowhere else.
//
// Read and delete never distinguish "does not exist" from "not visible to
// you": both surface as ErrTaskNotFound so callers cannot discover other
// users' tasks. Update is the exception and reports forbidden for a task that
// exists but is not the caller's.
package policy
