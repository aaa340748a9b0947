package contextkeys

type contextKey string

// DBContextKey - ключ для *gorm.DB текущего запроса (пул или открытая транзакция).
// Один и тот же ключ используется и в context.Context, и в gin.Context.
const DBContextKey = contextKey("mietlink.db")

func (k contextKey) String() string { return string(k) }
