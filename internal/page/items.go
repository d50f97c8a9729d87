package page

import (
	"github.com/Kyz7/hub/internal/models"
	"gorm.io/gorm"
)

// attachItems fills Content.Item with one query per content kind.
func attachItems(db *gorm.DB, contents []*models.Content) error {
	byKind := map[models.ContentKind][]*models.Content{}
	for _, c := range contents {
		byKind[c.Kind] = append(byKind[c.Kind], c)
	}

	for kind, list := range byKind {
		ids := make([]uint, 0, len(list))
		for _, c := range list {
			ids = append(ids, c.ObjectID)
		}

		items, err := findItems(db, kind, ids)
		if err != nil {
			return err
		}
		for _, c := range list {
			c.Item = items[c.ObjectID]
		}
	}
	return nil
}

func findItems(db *gorm.DB, kind models.ContentKind, ids []uint) (map[uint]models.Item, error) {
	switch kind {
	case models.KindText:
		return find[models.TextItem](db, ids)
	case models.KindFile:
		return find[models.FileItem](db, ids)
	case models.KindImage:
		return find[models.ImageItem](db, ids)
	case models.KindVideo:
		return find[models.VideoItem](db, ids)
	case models.KindURL:
		return find[models.URLItem](db, ids)
	}
	return map[uint]models.Item{}, nil
}

func find[T any, PT interface {
	*T
	models.Item
}](db *gorm.DB, ids []uint) (map[uint]models.Item, error) {
	var rows []T
	if err := db.Find(&rows, ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.Item, len(rows))
	for i := range rows {
		item := PT(&rows[i])
		out[item.ItemID()] = item
	}
	return out, nil
}
