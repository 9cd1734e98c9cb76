package catalog

// Platform bit positions for the underlying access-control system. The
// numbering is wire-compatible with the platform's permission bitfield and
// must never be reordered; persisted masks depend on it.
const (
	bitCreateInvite    = 0
	bitKickMembers     = 1
	bitBanMembers      = 2
	bitAdministrator   = 3
	bitManageChannels  = 4
	bitManageGuild     = 5
	bitAddReactions    = 6
	bitViewAuditLog    = 7
	bitPrioritySpeaker = 8
	bitStream          = 9
	bitViewChannel     = 10
	bitSendMessages    = 11
	bitSendTTS         = 12
	bitManageMessages  = 13
	bitEmbedLinks      = 14
	bitAttachFiles     = 15
	bitReadHistory     = 16
	bitMentionAll      = 17
	bitExternalEmojis  = 18
	bitGuildInsights   = 19
	bitConnect         = 20
	bitSpeak           = 21
	bitMuteMembers     = 22
	bitDeafenMembers   = 23
	bitMoveMembers     = 24
	bitUseVAD          = 25
	bitChangeNickname  = 26
	bitManageNicknames = 27
	bitManageRoles     = 28
	bitManageWebhooks  = 29
	bitUseAppCommands  = 31
	bitRequestToSpeak  = 32
	bitManageEvents    = 33
	bitManageThreads   = 34
	bitPublicThreads   = 35
	bitPrivateThreads  = 36
	bitExternalStick   = 37
	bitThreadMessages  = 38
	bitModerateMembers = 40
	bitUseSoundboard   = 42
	bitUseExternalApps = 50
)

func flag(bit int) Mask128 { return FlagFromBit(bit) }

// zero marks a cosmetic placeholder: the name exists in the vocabulary but
// the platform has no dedicated bit for it yet.
var zero = Mask128{}

// subjectBits is the role-level vocabulary in its user-facing order.
// PinMessages and BypassSlowmode are deliberately zero: the platform has no
// dedicated flags for them, and aliasing them to unrelated bits would make
// an innocent-looking selection mutate permissions the operator never chose.
// CreateEvents keeps the platform's historical aliasing to CreateInvite.
var subjectBits = []Bit{
	{Key: "ViewChannels", Label: "View Channels", Flag: flag(bitViewChannel)},
	{Key: "ManageChannels", Label: "Manage Channels", Flag: flag(bitManageChannels)},
	{Key: "ManageRoles", Label: "Manage Roles", Flag: flag(bitManageRoles)},
	{Key: "CreateExpressions", Label: "Create Expressions", Flag: zero},
	{Key: "ManageExpressions", Label: "Manage Expressions", Flag: zero},
	{Key: "ViewAuditLog", Label: "View Audit Log", Flag: flag(bitViewAuditLog)},
	{Key: "ViewServerInsights", Label: "View Server Insights", Flag: flag(bitGuildInsights)},
	{Key: "ManageWebhooks", Label: "Manage Webhooks", Flag: flag(bitManageWebhooks)},
	{Key: "ManageServer", Label: "Manage Server", Flag: flag(bitManageGuild)},
	{Key: "CreateInvite", Label: "Create Invite", Flag: flag(bitCreateInvite)},
	{Key: "ChangeNickname", Label: "Change Nickname", Flag: flag(bitChangeNickname)},
	{Key: "ManageNickname", Label: "Manage Nickname", Flag: flag(bitManageNicknames)},
	{Key: "KickApproveRejectMembers", Label: "Kick, Approve, and Reject Members", Flag: flag(bitKickMembers)},
	{Key: "BanMembers", Label: "Ban Members", Flag: flag(bitBanMembers)},
	{Key: "TimeoutMembers", Label: "Timeout Members", Flag: flag(bitModerateMembers)},
	{Key: "SendMessagesCreatePosts", Label: "Send Messages and Create Posts", Flag: flag(bitSendMessages)},
	{Key: "SendMessagesInThreadAndPosts", Label: "Send Messages in Thread and Posts", Flag: flag(bitThreadMessages)},
	{Key: "CreatePublicThread", Label: "Create Public Thread", Flag: flag(bitPublicThreads)},
	{Key: "CreatePrivateThread", Label: "Create Private Thread", Flag: flag(bitPrivateThreads)},
	{Key: "EmbedLinks", Label: "Embed Links", Flag: flag(bitEmbedLinks)},
	{Key: "AttachFiles", Label: "Attach Files", Flag: flag(bitAttachFiles)},
	{Key: "AddReactions", Label: "Add Reactions", Flag: flag(bitAddReactions)},
	{Key: "UseExternalEmojis", Label: "Use External Emojis", Flag: flag(bitExternalEmojis)},
	{Key: "UseExternalStickers", Label: "Use External Stickers", Flag: flag(bitExternalStick)},
	{Key: "MentionEveryone", Label: "Mention @everyone, @here, and All Roles", Flag: flag(bitMentionAll)},
	{Key: "ManageMessages", Label: "Manage Messages", Flag: flag(bitManageMessages)},
	{Key: "PinMessages", Label: "Pin Messages", Flag: zero},
	{Key: "BypassSlowmode", Label: "Bypass Slowmode", Flag: zero},
	{Key: "ManageThreadsAndPosts", Label: "Manage Threads and Posts", Flag: flag(bitManageThreads)},
	{Key: "ReadMessageHistory", Label: "Read Message History", Flag: flag(bitReadHistory)},
	{Key: "SendTTSMessages", Label: "Send Text-to-Speech Messages", Flag: flag(bitSendTTS)},
	{Key: "SendVoiceMessages", Label: "Send Voice Messages", Flag: zero},
	{Key: "CreatePolls", Label: "Create Polls", Flag: zero},
	{Key: "Connect", Label: "Connect", Flag: flag(bitConnect)},
	{Key: "Speak", Label: "Speak", Flag: flag(bitSpeak)},
	{Key: "Video", Label: "Video", Flag: flag(bitStream)},
	{Key: "UseSoundboard", Label: "Use Soundboard", Flag: flag(bitUseSoundboard)},
	{Key: "UseExternalSounds", Label: "Use External Sounds", Flag: zero},
	{Key: "UseVoiceActivity", Label: "Use Voice Activity", Flag: flag(bitUseVAD)},
	{Key: "PrioritySpeaker", Label: "Priority Speaker", Flag: flag(bitPrioritySpeaker)},
	{Key: "MuteMembers", Label: "Mute Members", Flag: flag(bitMuteMembers)},
	{Key: "DeafenMembers", Label: "Deafen Members", Flag: flag(bitDeafenMembers)},
	{Key: "MoveMembers", Label: "Move Members", Flag: flag(bitMoveMembers)},
	{Key: "SetVoiceChannelStatus", Label: "Set Voice Channel Status", Flag: flag(bitManageChannels)},
	{Key: "UseApplicationCommands", Label: "Use Application Commands", Flag: flag(bitUseAppCommands)},
	{Key: "UseActivities", Label: "Use Activities", Flag: flag(bitUseExternalApps)},
	{Key: "UseExternalApps", Label: "Use External Apps", Flag: flag(bitUseExternalApps)},
	{Key: "RequestToSpeak", Label: "Request To Speak", Flag: flag(bitRequestToSpeak)},
	{Key: "CreateEvents", Label: "Create Events", Flag: flag(bitCreateInvite)},
	{Key: "ManageEvents", Label: "Manage Events", Flag: flag(bitManageEvents)},
	{Key: "Administrator", Label: "Administrator", Flag: flag(bitAdministrator)},
}

// scopeBits is the channel-overwrite vocabulary in its user-facing order.
var scopeBits = []Bit{
	{Key: "ViewChannel", Label: "View Channel", Flag: flag(bitViewChannel)},
	{Key: "ManageChannel", Label: "Manage Channel", Flag: flag(bitManageChannels)},
	{Key: "ManagePermissions", Label: "Manage Permissions", Flag: flag(bitManageRoles)},
	{Key: "ManageWebhooks", Label: "Manage Webhooks", Flag: flag(bitManageWebhooks)},
	{Key: "CreateInvite", Label: "Create Invite", Flag: flag(bitCreateInvite)},
	{Key: "SendMessages", Label: "Send Messages", Flag: flag(bitSendMessages)},
	{Key: "SendMessagesInThreads", Label: "Send Messages In Threads", Flag: flag(bitThreadMessages)},
	{Key: "CreatePublicThread", Label: "Create Public Thread", Flag: flag(bitPublicThreads)},
	{Key: "CreatePrivateThread", Label: "Create Private Thread", Flag: flag(bitPrivateThreads)},
	{Key: "EmbedLinks", Label: "Embed Link", Flag: flag(bitEmbedLinks)},
	{Key: "AttachFiles", Label: "Attach Files", Flag: flag(bitAttachFiles)},
	{Key: "AddReactions", Label: "Add Reactions", Flag: flag(bitAddReactions)},
	{Key: "UseExternalEmojis", Label: "Use External Emojis", Flag: flag(bitExternalEmojis)},
	{Key: "UseExternalStickers", Label: "Use External Stickers", Flag: flag(bitExternalStick)},
	{Key: "MentionEveryone", Label: "Mention @everyone, @here, and All Roles", Flag: flag(bitMentionAll)},
	{Key: "ManageRolesChannel", Label: "Manage Roles (channel-level)", Flag: flag(bitManageRoles)},
	{Key: "PinMessages", Label: "Pin Messages", Flag: zero},
	{Key: "BypassSlowmode", Label: "Bypass Slowmode", Flag: zero},
	{Key: "ManageThreads", Label: "Manage Threads", Flag: flag(bitManageThreads)},
	{Key: "ReadMessageHistory", Label: "Read Message History", Flag: flag(bitReadHistory)},
	{Key: "SendTTSMessages", Label: "Send Text-to-Speech Messages", Flag: flag(bitSendTTS)},
	{Key: "SendVoiceMessages", Label: "Send Voice Messages", Flag: zero},
	{Key: "CreatePolls", Label: "Create Polls", Flag: zero},
	{Key: "UseApplicationCommands", Label: "Use Application Commands", Flag: flag(bitUseAppCommands)},
	{Key: "UseActivities", Label: "Use Activities", Flag: flag(bitUseExternalApps)},
	{Key: "UseExternalApps", Label: "Use External Apps", Flag: flag(bitUseExternalApps)},
}
