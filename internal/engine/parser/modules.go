package parser

import "sort"

// CollectModuleReferences reduces parsed files to the distinct
// (top-level module, file) pairs they import. Dotted paths collapse to
// their first component and bare relative imports are dropped: only
// top-level names can correspond to installable distributions.
func CollectModuleReferences(files []*File) []ModuleReference {
	seen := make(map[ModuleReference]bool)
	refs := make([]ModuleReference, 0)

	for _, file := range files {
		if file == nil {
			continue
		}
		for _, imp := range file.Imports {
			name := imp.TopLevelModule()
			if name == "" {
				continue
			}
			ref := ModuleReference{Name: name, File: file.Path}
			if seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Name != refs[j].Name {
			return refs[i].Name < refs[j].Name
		}
		return refs[i].File < refs[j].File
	})
	return refs
}

// GroupByModule indexes references as module name to referencing files,
// preserving the sorted order produced by CollectModuleReferences.
func GroupByModule(refs []ModuleReference) map[string][]string {
	grouped := make(map[string][]string)
	for _, ref := range refs {
		grouped[ref.Name] = append(grouped[ref.Name], ref.File)
	}
	return grouped
}
