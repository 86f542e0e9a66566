package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/thucvinguyen/coder-management/models"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

// CassandraStore keeps notifications in a table partitioned by user name.
type CassandraStore struct {
	session *gocql.Session
	logger  *logrus.Logger
}

// NewCassandraStore connects to hosts (comma separated), creating keyspace if needed.
func NewCassandraStore(hosts, keyspace string, logger *logrus.Logger) (*CassandraStore, error) {
	cluster := gocql.NewCluster(strings.Split(hosts, ",")...)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyspace %s: %w", keyspace, err)
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to keyspace %s: %w", keyspace, err)
	}

	logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra keyspace %s", keyspace)
	return &CassandraStore{session: session, logger: logger}, nil
}

func (s *CassandraStore) Close() {
	s.session.Close()
	s.logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed")
}

func (s *CassandraStore) CreateTable() error {
	err := s.session.Query(
		`CREATE TABLE IF NOT EXISTS task_notifications (
			id UUID,
			username TEXT,
			user_id TEXT,
			task_id TEXT,
			kind TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((username), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}
	return nil
}

func (s *CassandraStore) Save(ctx context.Context, n *models.Notification) error {
	id, err := gocql.ParseUUID(n.ID)
	if err != nil {
		return fmt.Errorf("invalid notification id %q: %w", n.ID, err)
	}
	err = s.session.Query(
		`INSERT INTO task_notifications (id, username, user_id, task_id, kind, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.Username, n.UserID, n.TaskID, string(n.Kind), n.Message, n.CreatedAt, n.IsRead,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

func (s *CassandraStore) ListByUsername(ctx context.Context, username string) ([]models.Notification, error) {
	iter := s.session.Query(
		`SELECT id, user_id, username, task_id, kind, message, created_at, is_read
		 FROM task_notifications WHERE username = ?`, username).WithContext(ctx).Iter()

	notifications := []models.Notification{}
	var (
		id   gocql.UUID
		kind string
		n    models.Notification
	)
	for iter.Scan(&id, &n.UserID, &n.Username, &n.TaskID, &kind, &n.Message, &n.CreatedAt, &n.IsRead) {
		n.ID = id.String()
		n.Kind = models.NotificationKind(kind)
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", username, err)
	}
	return notifications, nil
}
