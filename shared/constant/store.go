package constant

// Columns present on every owned table.
const (
	FieldUpdatedAt = "updated_at"
	FieldUserID    = "user_id"
)

const (
	PqErrorCodeUniqueViolation = "23505"

	// SQLite extended result codes, seen by repository tests.
	SqliteErrorCodeConstraintUnique     = 2067
	SqliteErrorCodeConstraintPrimaryKey = 1555
)

// List caches are keyed per user. Todo listings embed tags, so tag mutations
// clear both.
const (
	CacheKeySeparator = ":"
	CacheKeyTodoList  = "todo:list"
	CacheKeyTagList   = "tag:list"
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelS3ScopeName         = "s3"

	OtelQueryAttributeKey = "query"
)
