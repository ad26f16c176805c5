package services

import (
	"math"

	"strategymap/domain/config"
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
)

// RadialLayout suggests initial positions for new nodes. Roots fan out on a
// circle around the viewport centre; children fan out to the right of their
// parent. It only ever computes a position for a node being created.
type RadialLayout struct {
	cfg *config.DomainConfig
}

// NewRadialLayout creates a layout engine from the domain configuration
func NewRadialLayout(cfg *config.DomainConfig) *RadialLayout {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &RadialLayout{cfg: cfg}
}

// RootPosition places the index-th main node. An empty map anchors the first
// root exactly at the centre.
func (l *RadialLayout) RootPosition(index int, collectionEmpty bool, center geometry.Point) geometry.Point {
	if collectionEmpty {
		return center
	}

	slot := 360.0 / float64(l.cfg.MaxMainNodes)
	angle := (-90.0 + float64(index)*slot) * math.Pi / 180.0

	return geometry.Point{
		X: center.X + l.cfg.RootRadius*math.Cos(angle),
		Y: center.Y + l.cfg.RootRadius*math.Sin(angle),
	}
}

// ChildPosition places the siblingIndex-th child of parent. Even indices fan
// downwards, odd indices upwards, each step further from the parent's row.
func (l *RadialLayout) ChildPosition(parent entities.Node, siblingIndex int) geometry.Point {
	offset := float64(siblingIndex)*l.cfg.ChildFanStep + l.cfg.ChildFanBase
	if siblingIndex%2 == 1 {
		offset = -offset
	}

	return geometry.Point{
		X: parent.X() + l.childDistance(parent.Type()),
		Y: parent.Y() + offset,
	}
}

func (l *RadialLayout) childDistance(parentType valueobjects.NodeType) float64 {
	if parentType == valueobjects.NodeTypeMain {
		return l.cfg.MainToSecondaryDistance
	}
	return l.cfg.SecondaryToPostDistance
}
