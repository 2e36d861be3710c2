package database

import "workstation/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Referenced tables come before the tables that point at them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Skill{},
		&models.Tag{},
		&models.User{},
		&models.Project{},
		&models.ProjectSupporter{},
		&models.ProjectMembership{},
		&models.JoinRequest{},
		&models.ProjectUpdate{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
		&models.Comment{},
		&models.Thought{},
		&models.ThoughtLike{},
		&models.AIWorker{},
		&models.AIConversation{},
		&models.AIMessage{},
		&models.AITool{},
	}
}
