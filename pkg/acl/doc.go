// Package acl resolves effective permissions.
//
// An object grants a capability level to a principal through the first match
// in a fixed chain: public objects and superusers always pass, then the
// object's default permission, then the principal's own grant, then any grant
// held by one of the principal's groups. Evaluation never returns an error;
// anything that cannot be resolved is a deny.
package acl
