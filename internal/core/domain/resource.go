package domain

// Tag labels a class of upstream resource. Cached queries carry the tags of
// the resources they read; mutations declare the tags they invalidate.
type Tag string

const (
	TagLeads          Tag = "leads"
	TagProducts       Tag = "products"
	TagOrders         Tag = "orders"
	TagUsers          Tag = "users"
	TagCustomizations Tag = "customizations"
	TagSettings       Tag = "settings"
	TagCostings       Tag = "costings"
	TagDocuments      Tag = "documents"
)

// AllTags lists every tag in use, for priming version counters and metrics.
var AllTags = TagSet{
	TagLeads, TagProducts, TagOrders, TagUsers,
	TagCustomizations, TagSettings, TagCostings, TagDocuments,
}

// TagSet is an ordered set of resource tags.
type TagSet []Tag

// Contains reports whether t is a member of the set.
func (s TagSet) Contains(t Tag) bool {
	for _, m := range s {
		if m == t {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one tag.
func (s TagSet) Intersects(other TagSet) bool {
	for _, m := range other {
		if s.Contains(m) {
			return true
		}
	}
	return false
}

// Mutation invalidation declarations. Every write path names the resource
// classes it invalidates exactly once, here, so a forgotten dependent
// resource is a reviewable diff rather than a missing array element.
//
// A lead update also invalidates orders: a lead transitioning to
// "order confirmed" appears in both collections.
var (
	InvalidateInquiryCreate      = TagSet{TagLeads}
	InvalidateLeadUpdate         = TagSet{TagLeads, TagOrders}
	InvalidateProductWrite       = TagSet{TagProducts}
	InvalidateOrderCreate        = TagSet{TagOrders, TagLeads}
	InvalidateCustomizationWrite = TagSet{TagCustomizations}
	InvalidateCostingUpdate      = TagSet{TagCostings, TagOrders}
	InvalidateDocumentGenerate   = TagSet{TagDocuments, TagOrders}
	InvalidateUserWrite          = TagSet{TagUsers}
	InvalidateSettingsUpdate     = TagSet{TagSettings}
)
