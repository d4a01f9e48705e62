package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// queryBuilder собирает WHERE с плейсхолдерами $n.
type queryBuilder struct {
	sb   strings.Builder
	args []interface{}
}

func newQueryBuilder(base string, args ...interface{}) *queryBuilder {
	qb := &queryBuilder{args: args}
	qb.sb.WriteString(base)
	return qb
}

func (qb *queryBuilder) where(cond string, arg interface{}) {
	qb.args = append(qb.args, arg)
	qb.sb.WriteString(" AND ")
	qb.sb.WriteString(strings.Replace(cond, "?", "$"+strconv.Itoa(len(qb.args)), 1))
}

func (qb *queryBuilder) raw(s string) {
	qb.sb.WriteString(s)
}

func (qb *queryBuilder) limitOffset(limit, offset int) {
	if limit > 0 {
		qb.args = append(qb.args, limit)
		qb.sb.WriteString(" LIMIT $" + strconv.Itoa(len(qb.args)))
	}
	if offset > 0 {
		qb.args = append(qb.args, offset)
		qb.sb.WriteString(" OFFSET $" + strconv.Itoa(len(qb.args)))
	}
}

func (qb *queryBuilder) String() string {
	return qb.sb.String()
}

// jsonColumn реализует sql.Scanner/driver.Valuer поверх JSONB.
type jsonColumn struct {
	v interface{}
}

func (j jsonColumn) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, j.v)
	case string:
		return json.Unmarshal([]byte(data), j.v)
	}
	return fmt.Errorf("unsupported JSON column type %T", src)
}

// marshalJSON возвращает строку: []byte драйвер pq отправил бы как bytea.
func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON column: %w", err)
	}
	return string(data), nil
}
