package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconCheckList = "" // nf-fa-tasks
	IconChecked   = "[x]"
	IconUnchecked = "[ ]"
	IconDisabled  = "[~]"
)

// Toast icons.
var (
	IconNotifyInfo    = "" // nf-fa-info_circle
	IconNotifySuccess = "" // nf-fa-check_circle
	IconNotifyWarning = "" // nf-fa-warning
	IconNotifyError   = "" // nf-fa-times_circle
)
