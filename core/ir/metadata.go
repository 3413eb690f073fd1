package ir

// MetaDataID indexes into a Context's metadata registry. IDs are dense,
// small, and assigned in append-only order for the life of a compilation.
type MetaDataID uint32

// MetaDataNode is the payload attached under a MetaDataID: an ordered list
// of literals. Schemas with a fixed field order (see schema.go)
// read and write through this generic shape so unknown schemas round-trip
// as opaque literal lists (I6).
type MetaDataNode struct {
	Data []Literal
}

func (n *MetaDataNode) PushField(v Literal) { n.Data = append(n.Data, v) }

func (n *MetaDataNode) Operand(i uint32) Literal { return n.Data[i] }

// MetadataMap is a compact map from a stable string key (drawn from the
// fixed vocabulary in §3 I6) to a metadata node id. Instructions, type
// definitions, and functions all embed one of these rather than storing
// metadata inline, which keeps the hot instruction path small: per the
// design notes, only a key id and a node id travel with each instruction.
type MetadataMap map[string]MetaDataID

// MetadataNode is satisfied by IR elements that expose their attached
// metadata through a method: Instr and FunctionDefinition. TypeDefinition
// carries its map in its Metadata field instead and does not implement it.
type MetadataNode interface {
	Metadata() MetadataMap
}

// Well-known metadata attachment keys (§3 I6 fixed vocabulary). Unknown keys
// are permitted and preserved round-trip; these are simply the ones the
// backend and front-end are aware of.
const (
	MetaKeyDebugLocation       = "dbg"
	MetaKeyStoragePathExtraArgs = "ir_storage_path_extra_args"
	MetaKeyAsset               = "asset"
	MetaKeySSZInfo             = "ssz_info"
)

// Registry is the process-wide-in-the-original, per-compilation-here
// metadata store: a dense array of MetaDataNode indexed by MetaDataID.
type Registry struct {
	nodes []MetaDataNode
}

func NewRegistry() *Registry { return &Registry{} }

// Add appends a new metadata node and returns its freshly assigned id.
func (r *Registry) Add(node MetaDataNode) MetaDataID {
	id := MetaDataID(len(r.nodes))
	r.nodes = append(r.nodes, node)
	return id
}

func (r *Registry) Get(id MetaDataID) (*MetaDataNode, bool) {
	if int(id) >= len(r.nodes) {
		return nil, false
	}
	return &r.nodes[id], true
}

// Len reports how many metadata nodes have been registered so far.
func (r *Registry) Len() int { return len(r.nodes) }

// All returns every registered node together with its id, in id order —
// the canonical ordering the printer walks (§4.1 Printer contract).
func (r *Registry) All() []struct {
	ID   MetaDataID
	Node MetaDataNode
} {
	out := make([]struct {
		ID   MetaDataID
		Node MetaDataNode
	}, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = struct {
			ID   MetaDataID
			Node MetaDataNode
		}{MetaDataID(i), n}
	}
	return out
}
