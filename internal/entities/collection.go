package entities

// Collection names a document collection in the entity store.
type Collection string

const (
	CollectionUsers       Collection = "users"
	CollectionProjects    Collection = "projects"
	CollectionTasks       Collection = "tasks"
	CollectionTeams       Collection = "teams"
	CollectionReports     Collection = "reports"
	CollectionTaskUpdates Collection = "task_updates"
)

// Collections lists every collection known to the store.
var Collections = []Collection{
	CollectionUsers,
	CollectionProjects,
	CollectionTasks,
	CollectionTeams,
	CollectionReports,
	CollectionTaskUpdates,
}

// Document is an entity that can be persisted in the store.
type Document interface {
	DocID() string
	Collection() Collection
}

// Reference list fields maintained through push/pull.
const (
	FieldTasks       = "tasks"
	FieldReports     = "reports"
	FieldMembers     = "members"
	FieldTeamMembers = "team_members"
)

// Scalar fields written through field-level updates.
const (
	FieldTeam      = "team"
	FieldUpdatedAt = "updated_at"
)
