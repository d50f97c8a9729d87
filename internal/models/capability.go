package models

// Capabilities follow <action>_<resource>[_<locale>]. The per-unit workflow
// capabilities (request_update, confirm_update_en, ...) are built by
// workflow.Transition.Capability.
const (
	CapAddPage    = "add_page"
	CapChangePage = "change_page"
	CapDeletePage = "delete_page"

	CapAddSection       = "add_section"
	CapPublishSection   = "publish_section"
	CapUnpublishSection = "unpublish_section"
	CapDeleteSection    = "delete_section"
	CapReorderSection   = "reorder_section"

	CapAddContent     = "add_content"
	CapDisplayContent = "display_content"
	CapHideContent    = "hide_content"
	CapDeleteContent  = "delete_content"
	CapReorderContent = "reorder_content"

	CapManageLocations = "manage_locations"
)

var pageCapabilities = []string{
	CapAddPage, CapChangePage, CapDeletePage,
	CapAddSection, CapPublishSection, CapUnpublishSection, CapDeleteSection, CapReorderSection,
	CapAddContent, CapDisplayContent, CapHideContent, CapDeleteContent, CapReorderContent,
	CapManageLocations,
}

var transitionActions = []string{"request_update", "confirm_update", "reject_update"}

// IsHubCapability reports whether action is a capability the hub checks:
// one of the constants above, or a transition with an optional locale
// suffix.
func IsHubCapability(action string) bool {
	for _, c := range pageCapabilities {
		if c == action {
			return true
		}
	}
	for _, a := range transitionActions {
		if action == a {
			return true
		}
		for _, l := range Locales {
			if action == a+"_"+string(l) {
				return true
			}
		}
	}
	return false
}
