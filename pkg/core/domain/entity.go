package domain

// Entity names one level of the collection → section → link tree.
type Entity int

const (
	EntityCollection Entity = iota + 1
	EntitySection
	EntityLink
)

func (e Entity) String() string {
	switch e {
	case EntityCollection:
		return "collection"
	case EntitySection:
		return "section"
	case EntityLink:
		return "link"
	default:
		return "unknown"
	}
}

// SiblingGroup identifies a set of rows whose sort_order is scoped together.
// The parent id is the user for collections, the collection for sections
// and the section for links.
type SiblingGroup int

const (
	GroupCollections SiblingGroup = iota + 1
	GroupSections
	GroupLinks
)
