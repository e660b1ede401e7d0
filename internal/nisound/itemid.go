package nisound

import "fmt"

// ItemID identifies the typed payload an ItemFrame wraps. The domain is
// open: unrecognized values are preserved as Unsupported rather than
// rejected.
type ItemID uint32

// Known item IDs. ItemIDTerminator is the sentinel that ends a frame
// stack's recursive chain.
const (
	ItemIDTerminator ItemID = iota
	ItemIDRepositoryRoot
	ItemIDAuthorization
	ItemIDBNISoundPreset
	ItemIDBNISoundHeader
	ItemIDEncryptionItem
	ItemIDPresetChunkItem
	ItemIDSoundInfoItem
	ItemIDSubtreeItem
	ItemIDBankContainer
	ItemIDPresetContainer
	ItemIDAudioSampleItem
	ItemIDInternalResourceReferenceItem
	ItemIDExternalFileReference
	ItemIDPictureItem
	ItemIDControllerAssignments
	ItemIDAutomationParameters
	ItemIDAppSpecific
)

var itemIDNames = map[ItemID]string{
	ItemIDTerminator:                    "Item",
	ItemIDRepositoryRoot:                "RepositoryRoot",
	ItemIDAuthorization:                 "Authorization",
	ItemIDBNISoundPreset:                "BNISoundPreset",
	ItemIDBNISoundHeader:                "BNISoundHeader",
	ItemIDEncryptionItem:                "EncryptionItem",
	ItemIDPresetChunkItem:               "PresetChunkItem",
	ItemIDSoundInfoItem:                 "SoundInfoItem",
	ItemIDSubtreeItem:                   "SubtreeItem",
	ItemIDBankContainer:                 "BankContainer",
	ItemIDPresetContainer:               "PresetContainer",
	ItemIDAudioSampleItem:               "AudioSampleItem",
	ItemIDInternalResourceReferenceItem: "InternalResourceReferenceItem",
	ItemIDExternalFileReference:         "ExternalFileReference",
	ItemIDPictureItem:                   "PictureItem",
	ItemIDControllerAssignments:         "ControllerAssignments",
	ItemIDAutomationParameters:          "AutomationParameters",
	ItemIDAppSpecific:                   "AppSpecific",
}

func (id ItemID) String() string {
	if name, ok := itemIDNames[id]; ok {
		return name
	}
	return fmt.Sprintf("ItemID(%d)", uint32(id))
}

// Known returns whether id is one of the named constants above.
func (id ItemID) Known() bool {
	_, ok := itemIDNames[id]
	return ok
}
