// Package schema loads clinical form schemas from JSON or YAML documents.
//
// Loading runs in three passes: a structural check of the document against
// an embedded JSON Schema, decoding into the closed model (authored type
// aliases are mapped onto canonical kinds; unknown types are quarantined as
// model.KindUnknown), and semantic checks. The semantic checks enforce that
// field names are unique across the whole tree, since every answer lives in
// one flat AnswerSet.
package schema
