package ir

// Schema is the metadata-definition convention from §4.1: any record type
// with a fixed field order implements Schema so it can be attached to an
// instruction/type/function under a stable string key and recovered later.
// No package in this module defines a concrete schema yet; metadata is
// attached and read through MetadataMap and the Registry directly. This
// interface is all the IR core needs to know about.
type Schema interface {
	SchemaKey() string
	ToLiterals() []Literal
	FromLiterals([]Literal) error
}

// AttachMetadata records schema's literal encoding in the registry and
// stores the resulting id in m under schema's key, overwriting any previous
// attachment under that key.
func AttachMetadata(m MetadataMap, reg *Registry, schema Schema) {
	id := reg.Add(MetaDataNode{Data: schema.ToLiterals()})
	m[schema.SchemaKey()] = id
}

// RecoverMetadata looks up the node attached under schema's key and decodes
// it in place. It reports false if no node is attached under that key.
func RecoverMetadata(m MetadataMap, reg *Registry, schema Schema) (bool, error) {
	id, ok := m[schema.SchemaKey()]
	if !ok {
		return false, nil
	}
	node, ok := reg.Get(id)
	if !ok {
		return false, nil
	}
	if err := schema.FromLiterals(node.Data); err != nil {
		return false, err
	}
	return true, nil
}
