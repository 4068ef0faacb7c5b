package sqlinline

const QInsertPlanVerification = `--sql 14fa4fc7-347a-4fb4-9a50-2b83d46a534a
insert into plan_verifications (id, user_id, plan, source, receipt, entitlements, verified_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, nullif($4::text, ''), $5::jsonb, now());
`

const QSelectLastPlanVerification = `--sql c0f6da48-df7d-4b8d-9a46-26caba6067d5
select plan, source, verified_at
from plan_verifications
where user_id = $1::uuid
order by verified_at desc
limit 1;
`
