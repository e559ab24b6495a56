// 包 numbering：名次分配；地图标记徽标与结果列表行共用同一份映射
package numbering

import "bizmap/internal/business"

// Numbering：实体标识 → 名次（从 1 开始）的部分映射；零值表示全部未排名
type Numbering struct {
	ranks map[business.ID]int
}

// Assign：名次 = 在 ranked 中的位置 + 1
// 约束：ranked 可以包含 full 之外的实体（不会被绘制，不视为错误）；重复标识保留首次出现的位置
func Assign(full, ranked []business.Business) Numbering {
	if ranked == nil {
		return Numbering{}
	}
	m := make(map[business.ID]int, len(ranked))
	for i, b := range ranked {
		if _, ok := m[b.ID]; ok {
			continue
		}
		m[b.ID] = i + 1
	}
	return Numbering{ranks: m}
}

// Rank：返回名次；未排名时 ok 为 false
func (n Numbering) Rank(id business.ID) (int, bool) {
	r, ok := n.ranks[id]
	return r, ok
}

func (n Numbering) Len() int { return len(n.ranks) }
