// Package model defines the database models for cmdbkit.
//
// This package contains GORM models that map to the cmdbkit PostgreSQL schema.
// The schema is an Entity-Attribute-Value layout: attribute values are rows,
// not columns, and every value write appends a new version.
//
// # Core Models
//
//   - Entity: an entity type (schema node)
//   - EntityAttr: an attribute definition on an Entity (schema node)
//   - Entry: an instance of an Entity
//   - Attribute: an instance of an EntityAttr, owned by an Entry
//   - AttributeValue: one version of an Attribute's value
//   - Permission: an access grant (principal, object, level)
//   - User, Group, GroupMembership: principals
//   - Job: one asynchronous mutation with its dependency link
//
// # Database Schema
//
// The database uses PostgreSQL with the following key tables:
//
//   - entities, entity_attrs: schema side of the hierarchy
//   - entries, attributes: instance side of the hierarchy
//   - attribute_values: append-only value history
//   - permissions: access grants
//   - users, groups, group_memberships: principals
//   - jobs: asynchronous mutation queue
package model
