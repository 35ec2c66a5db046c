package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/akyairhashvil/ascetic/internal/util"
)

const taskColumns = `id, title, section, created_at, updated_at, last_title_edit_at, date_added_to_today, due_date, is_focus, tags, subtasks`

func subtasksToJSON(subs []models.Subtask) string {
	if len(subs) == 0 {
		return "[]"
	}
	bytes, _ := json.Marshal(subs)
	return string(bytes)
}

func jsonToSubtasks(jsonStr string) []models.Subtask {
	var subs []models.Subtask
	if jsonStr == "" || jsonStr == "null" {
		return []models.Subtask{}
	}
	json.Unmarshal([]byte(jsonStr), &subs)
	if subs == nil {
		subs = []models.Subtask{}
	}
	return subs
}

// LoadTasks reads the full mirrored collection.
func (d *Database) LoadTasks(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	rows, err := d.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		var focus int
		var tags, subs sql.NullString
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Section,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.LastTitleEditAt,
			&t.DateAddedToToday,
			&t.DueDate,
			&focus,
			&tags,
			&subs,
		); err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
		t.IsFocus = util.IntToBool(focus)
		t.Tags = util.JSONToTags(tags.String)
		t.Subtasks = jsonToSubtasks(subs.String)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

// ReplaceTasks clears the mirror and inserts the collection in one
// transaction.
func (d *Database) ReplaceTasks(ctx context.Context, tasks []models.Task) error {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, t := range tasks {
			if _, err := stmt.ExecContext(ctx,
				t.ID,
				t.Title,
				t.Section,
				t.CreatedAt,
				t.UpdatedAt,
				t.LastTitleEditAt,
				t.DateAddedToToday,
				t.DueDate,
				util.BoolToInt(t.IsFocus),
				util.TagsToJSON(t.Tags),
				subtasksToJSON(t.Subtasks),
			); err != nil {
				return fmt.Errorf("insert task %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace tasks: %w", err)
	}
	return nil
}
