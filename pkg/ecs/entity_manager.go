package ecs

import (
	"reflect"
	"sort"
)

// EntityID 是实体的唯一标识符
// ID 单调递增，从 1 开始；数值越小的实体创建得越早
type EntityID uint64

// EntityManager 管理所有实体和组件
//
// 与游戏中的延迟删除不同，这里的 DestroyEntity 立即生效：
// 动画实例卸载时必须在同一帧内从所有集合中移除。
type EntityManager struct {
	nextID uint64
	// 实体-组件映射: EntityID -> ComponentType -> Component实例
	components map[EntityID]map[reflect.Type]any
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:     1, // ID从1开始,0保留为无效ID
		components: make(map[EntityID]map[reflect.Type]any),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	id := EntityID(em.nextID)
	em.nextID++
	em.components[id] = make(map[reflect.Type]any)
	return id
}

// DestroyEntity 立即删除实体及其所有组件
// 对不存在的实体调用是安全的
func (em *EntityManager) DestroyEntity(id EntityID) {
	delete(em.components, id)
}

// Alive 检查实体是否仍然存在
func (em *EntityManager) Alive(id EntityID) bool {
	_, ok := em.components[id]
	return ok
}

// Count 返回存活实体数量
func (em *EntityManager) Count() int {
	return len(em.components)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// AddComponent 为实体添加组件（同类型组件会被覆盖）
func AddComponent[T any](em *EntityManager, id EntityID, component T) {
	if compMap, exists := em.components[id]; exists {
		compMap[typeOf[T]()] = component
	}
}

// RemoveComponent 从实体移除指定类型的组件
func RemoveComponent[T any](em *EntityManager, id EntityID) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, typeOf[T]())
	}
}

// GetComponent 获取实体的特定类型组件
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	var zero T
	compMap, exists := em.components[id]
	if !exists {
		return zero, false
	}
	comp, found := compMap[typeOf[T]()]
	if !found {
		return zero, false
	}
	return comp.(T), true
}

// HasComponent 检查实体是否拥有特定类型组件
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	if compMap, exists := em.components[id]; exists {
		_, found := compMap[typeOf[T]()]
		return found
	}
	return false
}

// GetEntitiesWith 查询拥有 T 组件的所有实体，按 ID 升序返回
func GetEntitiesWith[T any](em *EntityManager) []EntityID {
	return em.entitiesWith(typeOf[T]())
}

// GetEntitiesWith2 查询同时拥有 T1、T2 组件的所有实体，按 ID 升序返回
func GetEntitiesWith2[T1, T2 any](em *EntityManager) []EntityID {
	return em.entitiesWith(typeOf[T1](), typeOf[T2]())
}

// entitiesWith 查询拥有指定组件类型组合的所有实体
// 结果按 ID 排序，保证每帧的遍历顺序确定（测试可复现）
func (em *EntityManager) entitiesWith(componentTypes ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)

	for id, compMap := range em.components {
		hasAll := true
		for _, ct := range componentTypes {
			if _, found := compMap[ct]; !found {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, id)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
