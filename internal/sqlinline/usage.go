package sqlinline

const QSelectUsageCounters = `--sql 4794f879-c6d2-43eb-bf6e-99162e9f793c
select coalesce(voice_recordings_used, 0), coalesce(invoices_created, 0)
from usage_counters
where user_id = $1::uuid;
`

// The increment queries enforce the cap inside the update: when the
// counter already sits at the limit the predicate fails and no row comes
// back, so concurrent requests cannot race past the cap. A negative $2
// means no limit. The insert arm is unguarded; a fresh row starts at
// one, below any positive cap.
const QIncrementVoiceRecordings = `--sql 55e5fdb0-47d6-4755-baeb-744b29816126
insert into usage_counters (user_id, voice_recordings_used, invoices_created)
values ($1::uuid, 1, 0)
on conflict (user_id) do update
set voice_recordings_used = usage_counters.voice_recordings_used + 1,
    updated_at = now()
where $2::int < 0 or usage_counters.voice_recordings_used < $2::int
returning voice_recordings_used, invoices_created;
`

const QIncrementInvoices = `--sql 30296750-d554-4dd4-b3f9-7a25d07e84c3
insert into usage_counters (user_id, voice_recordings_used, invoices_created)
values ($1::uuid, 0, 1)
on conflict (user_id) do update
set invoices_created = usage_counters.invoices_created + 1,
    updated_at = now()
where $2::int < 0 or usage_counters.invoices_created < $2::int
returning voice_recordings_used, invoices_created;
`

const QResetUsageCounters = `--sql 4ef88f70-9143-4416-a70f-da94e515fedf
update usage_counters
set voice_recordings_used = 0,
    invoices_created = 0,
    updated_at = now()
where user_id = $1::uuid;
`
