package rbac

const (
	PermAnswerKeyUpload    = "answerkey:upload"
	PermAnswerKeyList      = "answerkey:list"
	PermObservationsList   = "observations:list"
	PermObservationsExport = "observations:export"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"viewer": {
		PermObservationsList,
	},
	"editor": {
		"answerkey:*",
		"observations:*",
	},
	"admin": {
		"*", // everything
	},
}
