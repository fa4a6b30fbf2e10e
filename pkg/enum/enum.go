package enum

type Storage int

const (
	MemoryStorage Storage = iota
	RedisStorage
)

func (s Storage) String() string {
	return [...]string{"memory", "redis"}[s]
}
