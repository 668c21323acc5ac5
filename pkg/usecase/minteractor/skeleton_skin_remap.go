// 指示: miu200521358
package minteractor

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// repairSkinWeights はウェイト付き頂点の旧ボーンインデックスを新しいボーン一覧のインデックスへ置き換える。
// 頂点から参照されているインデックスのみ解決し、解決できない場合はルートのインデックスを使う。
func (r *referenceRepairer) repairSkinWeights() error {
	if r.converted.Skins == nil {
		return nil
	}

	referenced := map[int]struct{}{}
	r.converted.Skins.ForEachAttachment(func(_ *model.Skin, _, _ string, attachment *model.Attachment) {
		if !attachment.Weighted {
			return
		}
		for _, vertex := range attachment.Vertices {
			for _, weight := range vertex.Bones {
				referenced[weight.BoneIndex] = struct{}{}
			}
		}
	})
	if len(referenced) == 0 {
		return nil
	}

	oldIndices := make([]int, 0, len(referenced))
	for index := range referenced {
		oldIndices = append(oldIndices, index)
	}
	sort.Ints(oldIndices)

	resolvedNames := make(map[int]string, len(oldIndices))
	for _, oldIndex := range oldIndices {
		if oldIndex < 0 || oldIndex >= len(r.originalBones) || r.originalBones[oldIndex] == nil {
			continue
		}
		oldName := r.originalBones[oldIndex].Name
		if oldName == "" {
			continue
		}
		resolved, ok, err := r.resolve(oldName, "skin weights", false)
		if err != nil {
			return err
		}
		if !ok {
			resolved = r.rootName
		}
		resolvedNames[oldIndex] = resolved
	}

	newIndexByName := make(map[string]int, len(r.converted.Bones))
	for index, bone := range r.converted.Bones {
		if _, exists := newIndexByName[bone.Name]; !exists {
			newIndexByName[bone.Name] = index
		}
	}
	rootIndex := newIndexByName[r.rootName]
	oldToNew := make(map[int]int, len(resolvedNames))
	for oldIndex, name := range resolvedNames {
		newIndex, ok := newIndexByName[name]
		if !ok {
			newIndex = rootIndex
		}
		oldToNew[oldIndex] = newIndex
	}

	remapped := 0
	r.converted.Skins.ForEachAttachment(func(_ *model.Skin, _, _ string, attachment *model.Attachment) {
		if !attachment.Weighted {
			return
		}
		for vertexIndex := range attachment.Vertices {
			weights := attachment.Vertices[vertexIndex].Bones
			for weightIndex := range weights {
				newIndex, ok := oldToNew[weights[weightIndex].BoneIndex]
				if !ok {
					newIndex = rootIndex
				}
				weights[weightIndex].BoneIndex = newIndex
			}
		}
		remapped++
	})
	if remapped > 0 {
		r.report.Warnings = append(r.report.Warnings, fmt.Sprintf(
			"Remapped weighted skin bone indices for %d attachment(s).", remapped,
		))
	}
	return nil
}
