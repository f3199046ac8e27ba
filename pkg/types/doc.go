// Package types defines the Model, Connection and capability interfaces,
// custom field types, and standard errors for the prospyr CRM mapping layer.
//
// A Model is a local view of one remote CRM record. Capabilities (Creatable,
// Readable, Updateable, Deletable) are separate interfaces; concrete resources
// in package resources implement the subset the remote API supports and
// delegate the HTTP work to package orm.
package types
